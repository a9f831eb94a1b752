package sat

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Status is the ternary outcome of a solve attempt (spec.md §6/§7),
// replacing the teacher's bare LBool return so a timeout/interrupt can be
// told apart from genuine incompleteness. Named distinctly from LBool's own
// Unknown/True/False (lbool.go) since both live in this package.
type Status int8

const (
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
	StatusInterrupted
)

func (st Status) String() string {
	switch st {
	case StatusSat:
		return "SAT"
	case StatusUnsat:
		return "UNSAT"
	case StatusInterrupted:
		return "INTERRUPTED"
	default:
		return "UNKNOWN"
	}
}

// ErrNotRootLevel is returned by AddClause/AddLearnedClause when called at
// a decision level other than 0 (spec.md §7's InvalidArgument class).
var ErrNotRootLevel = errors.New("sat: clause can only be added at decision level 0")

// Options configures a Solver. The zero value is never valid on its own;
// start from DefaultOptions.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64

	PolarityMode PolarityMode
	// RandomPolarityFreq is the fraction (in [0, 1]) of PolarityRandom
	// decisions that get an actual coin flip; the remainder fall back to
	// the last-saved phase. Ignored by every other PolarityMode.
	RandomPolarityFreq float64
	RandomSeed         uint64
	RestartStrategy    RestartMode

	// ClauseTierGlueLimits holds the two glue cutoffs used by
	// classifyTier: limits[0] is the TierCore threshold, limits[1] the
	// TierMid threshold, named after cryptominisat's
	// glue_put_lev0_if_below_or_eq/glue_put_lev1_if_below_or_eq.
	ClauseTierGlueLimits [2]int
	// TierMidMaxAge is the number of conflicts a TierMid clause may go
	// without being used as a reason before it is demoted to TierLocal.
	TierMidMaxAge int64
	// CompactionDeadFraction is the fraction of dead arena slots that
	// triggers Arena.Compact during ReduceDB.
	CompactionDeadFraction float64

	// ReduceDBBase is the number of learned long clauses that triggers the
	// first ReduceDB pass of a Solve call; the threshold then grows by the
	// constant ReduceDBInc after every pass.
	ReduceDBBase int64
	ReduceDBInc  int64

	MaxConflicts int64         // <0 disables
	Timeout      time.Duration // <0 disables
}

var DefaultOptions = Options{
	ClauseDecay:            0.999,
	VariableDecay:          0.95,
	PolarityMode:           PolarityLastSaved,
	RandomPolarityFreq:     0.02,
	RandomSeed:             1,
	RestartStrategy:        RestartGlucose,
	ClauseTierGlueLimits:   [2]int{3, 6},
	TierMidMaxAge:          10000,
	CompactionDeadFraction: 0.3,
	ReduceDBBase:           2000,
	ReduceDBInc:            300,
	MaxConflicts:           -1,
	Timeout:                -1,
}

// Solver is a CDCL SAT solver instance. Its fields are grouped the way the
// teacher groups them (clause database, variable ordering, propagation,
// trail, search statistics, scratch buffers), extended with the arena,
// restart controller, polarity store and assumption/interrupt state
// SPEC_FULL.md's expansion adds.
type Solver struct {
	opts Options

	// Clause database.
	arena          *Arena
	problemClauses []ClauseHandle // root-level long clauses, kept for compaction
	learnts        []ClauseHandle // learned long clauses
	binaryClauses  [][2]Literal
	learntBinaries int
	clauseInc      float64

	// Variable ordering and polarity.
	order    *VarOrder
	polarity *PolarityStore

	// Restart schedule.
	restart *RestartController

	// Propagation and watch lists.
	watchers    [][]watcher
	tmpWatchers []watcher
	qhead       int

	// Assignment and trail.
	assigns   []LBool
	trail     []Literal
	trailLim  []int
	varLevel  []int
	varReason []Reason

	// Assumptions consumed by decision level: level i (1-based) corresponds
	// to assumptions[i-1]; see search's no-conflict branch.
	assumptions   []Literal
	finalConflict []Literal

	unsat bool

	// Search statistics.
	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
	startTime       time.Time

	interrupted atomic.Bool

	// Models collected across successive Solve calls.
	Models [][]bool

	// Scratch buffers shared across calls to avoid reallocating on every
	// conflict (same rationale as the teacher's tmpWatchers/tmpLearnts).
	seenVar      *ResetSet
	tags         tagSet
	tmpLearnts   []Literal
	tmpReason    []Literal
	analyzeLitOf []Literal
	minimizeBuf  []Literal
	minimizeBuf2 []Literal
	lbdMarks     []uint32
	lbdStamp     uint32
}

// NewSolver returns an empty Solver configured with opts.
func NewSolver(opts Options) *Solver {
	return &Solver{
		opts:      opts,
		arena:     NewArena(),
		order:     NewVarOrder(opts.VariableDecay),
		polarity:  NewPolarityStore(opts.PolarityMode, opts.RandomPolarityFreq, opts.RandomSeed),
		restart:   NewRestartController(opts.RestartStrategy),
		seenVar:   &ResetSet{},
		clauseInc: 1,
	}
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NumVariables reports how many variables have been declared.
func (s *Solver) NumVariables() int { return len(s.assigns) / 2 }

// NumAssigns reports how many literals are currently on the trail.
func (s *Solver) NumAssigns() int { return len(s.trail) }

// NumLearnts reports the number of learned clauses (long and binary).
func (s *Solver) NumLearnts() int { return len(s.learnts) + s.learntBinaries }

// VarValue returns the current value of variable x.
func (s *Solver) VarValue(x int) LBool { return s.assigns[PositiveLiteral(x)] }

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool { return s.assigns[l] }

// AddVariable declares a new variable, returning its index.
func (s *Solver) AddVariable() int {
	v := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.varLevel = append(s.varLevel, -1)
	s.varReason = append(s.varReason, Reason{})
	s.seenVar.Expand()
	s.tags.Expand()
	s.order.NewVar(0)
	s.polarity.NewVar()
	return v
}

// AddClause adds a root-level (problem) clause. It returns ErrNotRootLevel
// if called mid-search. A clause that is, or becomes, empty after
// simplification makes the whole problem UNSAT (sticky, spec.md §7); that
// is a legitimate solver outcome, not reported as an error.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause: %w", ErrNotRootLevel)
	}
	ref, ok := newClause(s, lits, false, 0)
	if !ok {
		s.unsat = true
		return nil
	}
	if ref.kind == refLong {
		s.problemClauses = append(s.problemClauses, ref.handle)
	}
	return nil
}

// AddLearnedClause injects an externally-derived clause (e.g. from a
// portfolio collaborator) at decision level 0, per spec.md §6's
// add_learned_clause. glue seeds the clause's tier classification.
func (s *Solver) AddLearnedClause(lits []Literal, glue int) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddLearnedClause: %w", ErrNotRootLevel)
	}
	ref, ok := newClause(s, lits, true, glue)
	if !ok {
		s.unsat = true
		return nil
	}
	if ref.kind == refLong {
		s.learnts = append(s.learnts, ref.handle)
	}
	return nil
}

// record adds a just-derived learned clause and enqueues its asserting
// literal (lits[0]), which becomes unit immediately after the caller's
// cancelUntil(backjumpLevel).
func (s *Solver) record(lits []Literal, glue int) {
	ref, ok := newClause(s, lits, true, glue)
	if !ok {
		s.unsat = true
		return
	}
	switch ref.kind {
	case refLong:
		s.learnts = append(s.learnts, ref.handle)
		s.arena.Get(ref.handle).protectd = true
		s.enqueue(lits[0], Reason{kind: reasonLong, handle: ref.handle})
	case refBinary:
		s.enqueue(lits[0], Reason{kind: reasonBinary, lit: lits[1]})
	case refNone:
		// newClause already enqueued the unit literal as a permanent fact.
	}
}

// Simplify removes root-level-satisfied clauses from the problem and
// learned databases (spec.md §6's simplify()). It must only be called at
// decision level 0; like AddClause/AddLearnedClause, calling it above level
// 0 is caller misuse, not an internal bug, so it reports ErrNotRootLevel
// rather than panicking.
func (s *Solver) Simplify() (bool, error) {
	if s.decisionLevel() != 0 {
		return false, fmt.Errorf("sat: Simplify: %w", ErrNotRootLevel)
	}
	if s.unsat || s.Propagate() != nil {
		s.unsat = true
		return false, nil
	}

	s.problemClauses = s.simplifyHandles(s.problemClauses)
	s.learnts = s.simplifyHandles(s.learnts)
	return true, nil
}

func (s *Solver) simplifyHandles(handles []ClauseHandle) []ClauseHandle {
	j := 0
	for _, h := range handles {
		c := s.arena.Get(h)
		if c.simplify(s) {
			s.unwatchLong(h, c.literals[0].Opposite())
			s.unwatchLong(h, c.literals[1].Opposite())
			s.arena.Free(h)
			continue
		}
		handles[j] = h
		j++
	}
	return handles[:j]
}

// Interrupt requests that any in-progress Solve return Interrupted at its
// next cooperative check point (spec.md §9: once per conflict and once
// after each Propagate return, never inside the propagation inner loop).
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

func (s *Solver) shouldStop(ctx context.Context) bool {
	if s.interrupted.Load() {
		return true
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if s.opts.MaxConflicts >= 0 && s.TotalConflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout >= 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

// FinalConflict returns the subset of (negated) assumptions responsible
// for the last Solve call returning Unsat, or nil if that result was a
// permanent (assumption-independent) UNSAT, or the last result was not
// Unsat at all.
func (s *Solver) FinalConflict() []Literal {
	return s.finalConflict
}

// Solve attempts to find a satisfying assignment, treating every literal in
// assumptions as a forced decision (spec.md §6's solve(assumptions,
// budget)). ctx may be nil; its cancellation is polled the same way
// Interrupt is.
func (s *Solver) Solve(ctx context.Context, assumptions []Literal) Status {
	if s.unsat {
		return StatusUnsat
	}

	s.assumptions = assumptions
	s.finalConflict = nil
	s.interrupted.Store(false)
	s.startTime = time.Now()

	reduceLimit := s.opts.ReduceDBBase

	for {
		status := s.search(ctx, &reduceLimit)
		if status != StatusUnknown {
			s.cancelUntil(0)
			return status
		}
		if s.shouldStop(ctx) {
			s.cancelUntil(0)
			return StatusInterrupted
		}
	}
}

// search runs until the next restart boundary, a model is found, the
// problem is proven unsatisfiable, or a stop condition is hit, in which
// case it returns StatusUnknown so Solve can decide whether to loop again.
func (s *Solver) search(ctx context.Context, reduceLimit *int64) Status {
	for {
		if s.shouldStop(ctx) {
			return StatusUnknown
		}
		s.TotalIterations++

		confl := s.Propagate()
		if s.shouldStop(ctx) {
			return StatusUnknown
		}

		if confl != nil {
			s.TotalConflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return StatusUnsat
			}
			if s.decisionLevel() <= len(s.assumptions) {
				s.finalConflict = s.analyzeFinalFromConflict(confl)
				return StatusUnsat
			}

			learned, backjump, lbd := s.analyze(confl)
			s.restart.OnConflict(lbd, len(s.trail))
			s.cancelUntil(backjump)
			s.record(learned, lbd)

			s.order.DecayScores()
			s.decayClauseActivity()

			if int64(len(s.learnts)) >= *reduceLimit {
				s.ReduceDB()
				*reduceLimit += s.opts.ReduceDBInc
			}
			continue
		}

		// No conflict.
		if s.decisionLevel() == 0 {
			// decisionLevel() == 0 here, so the ErrNotRootLevel case
			// (caller misuse above level 0) can never fire.
			if ok, _ := s.Simplify(); !ok {
				return StatusUnsat
			}
		}

		if s.restart.ShouldRestart(len(s.trail)) {
			s.TotalRestarts++
			s.restart.OnRestart()
			s.cancelUntil(0)
			return StatusUnknown
		}

		if s.decisionLevel() < len(s.assumptions) {
			p := s.assumptions[s.decisionLevel()]
			switch s.LitValue(p) {
			case False:
				s.finalConflict = s.analyzeFinalForLiteral(p)
				return StatusUnsat
			case True:
				s.newDecisionLevel() // keep decisionLevel() aligned with assumptions consumed
				continue
			default:
				s.assume(p)
				continue
			}
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			return StatusSat
		}

		v, ok := s.order.PopMax()
		for ok && s.VarValue(v) != Unknown {
			v, ok = s.order.PopMax()
		}
		if !ok {
			s.saveModel()
			return StatusSat
		}
		s.assume(s.polarity.Decide(v))
	}
}

// bumpVarActivity increases variable v's VSIDS-style score. Called from
// analyze's trail walk for every variable touched during conflict
// resolution.
func (s *Solver) bumpVarActivity(v int) {
	s.order.BumpScore(v)
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc /= s.opts.ClauseDecay
	if s.clauseInc <= 1e100 {
		return
	}
	s.clauseInc *= 1e-100
	for _, h := range s.learnts {
		s.arena.Get(h).activity *= 1e-100
	}
}

// ProblemLiterals returns a snapshot of the root-level problem, for
// persisting it back to DIMACS text (internal/dimacs.WriteDIMACS): one unit
// clause per literal assigned at decision level 0, then every root-level
// (non-learned) binary and long clause's literals. The returned slices are
// copies; the caller may hold onto them across further Solve calls.
func (s *Solver) ProblemLiterals() [][]Literal {
	out := make([][]Literal, 0, len(s.binaryClauses)+len(s.problemClauses))
	rootEnd := len(s.trail)
	if len(s.trailLim) > 0 {
		rootEnd = s.trailLim[0]
	}
	for _, l := range s.trail[:rootEnd] {
		out = append(out, []Literal{l})
	}
	for _, bc := range s.binaryClauses {
		out = append(out, []Literal{bc[0], bc[1]})
	}
	for _, h := range s.problemClauses {
		c := s.arena.Get(h)
		if c.deleted {
			continue
		}
		out = append(out, append([]Literal(nil), c.literals...))
	}
	return out
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		model[i] = s.VarValue(i) == True
	}
	s.Models = append(s.Models, model)
}
