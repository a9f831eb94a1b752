package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/gosat-project/yass/internal/dimacs"
	"github.com/gosat-project/yass/sat"
)

// Exit codes follow the DIMACS/SAT-competition convention the teacher's own
// CLI already prints status text for: 10 for SAT, 20 for UNSAT, 15 for a
// budget cutoff (interrupted/unknown) rather than a genuine result.
const (
	exitSat        = 10
	exitUnsat      = 20
	exitUnknown    = 15
	exitUsageError = 1
	exitParseError = 2
)

var (
	flagCPUProfile  = flag.Bool("cpuprof", false, "save pprof CPU profile in cpuprof")
	flagMemProfile  = flag.Bool("memprof", false, "save pprof memory profile in memprof")
	flagGzip        = flag.Bool("gzip", false, "the instance file is gzip-compressed")
	flagAssume      = flag.String("assume", "", "comma-separated signed DIMACS literals to assume, e.g. 1,-2,3")
	flagTimeout     = flag.Duration("timeout", 0, "abort after this long with exit code 15 (0 disables)")
	flagMaxConflict = flag.Int64("max-conflicts", -1, "abort after this many conflicts with exit code 15 (<0 disables)")
)

type config struct {
	instanceFile string
	memProfile   bool
	cpuProfile   bool
	gzipped      bool
	assumptions  []sat.Literal
	timeout      time.Duration
	maxConflicts int64
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}

	assumptions, err := parseAssumptions(*flagAssume)
	if err != nil {
		return nil, fmt.Errorf("invalid -assume: %w", err)
	}

	return &config{
		instanceFile: flag.Arg(0),
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
		gzipped:      *flagGzip,
		assumptions:  assumptions,
		timeout:      *flagTimeout,
		maxConflicts: *flagMaxConflict,
	}, nil
}

// parseAssumptions turns a comma-separated list of signed DIMACS literals
// (1-based, negative for the negated literal) into solver literals.
func parseAssumptions(s string) ([]sat.Literal, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	lits := make([]sat.Literal, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer: %w", p, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("0 is not a valid DIMACS literal")
		}
		if n < 0 {
			lits = append(lits, sat.NegativeLiteral(-n-1))
		} else {
			lits = append(lits, sat.PositiveLiteral(n-1))
		}
	}
	return lits, nil
}

func run(cfg *config) (sat.Status, error) {
	opts := sat.DefaultOptions
	if cfg.maxConflicts >= 0 {
		opts.MaxConflicts = cfg.maxConflicts
	}
	if cfg.timeout > 0 {
		opts.Timeout = cfg.timeout
	}

	s := sat.NewSolver(opts)
	if err := dimacs.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return sat.StatusUnknown, fmt.Errorf("could not load instance: %w", err)
	}

	fmt.Printf("c variables:  %d\n", s.NumVariables())

	ctx := context.Background()
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	t := time.Now()
	status := s.Solve(ctx, cfg.assumptions)
	elapsed := time.Since(t)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c status:     %s\n", status.String())

	if status == sat.StatusUnsat && len(cfg.assumptions) > 0 {
		fmt.Printf("c final conflict: %v\n", s.FinalConflict())
	}

	return status, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Print(err)
		os.Exit(exitUsageError)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	status, err := run(cfg)
	if err != nil {
		log.Print(err)
		os.Exit(exitParseError)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	switch status {
	case sat.StatusSat:
		os.Exit(exitSat)
	case sat.StatusUnsat:
		os.Exit(exitUnsat)
	default:
		os.Exit(exitUnknown)
	}
}
