package sat

import (
	"context"
	"testing"
)

func newTestSolver(nVars int) *Solver {
	s := NewDefaultSolver()
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	return s
}

func addClause(t *testing.T, s *Solver, lits ...Literal) {
	t.Helper()
	if err := s.AddClause(lits); err != nil {
		t.Fatalf("AddClause(%v): %s", lits, err)
	}
}

func TestSolve_TrivialSat(t *testing.T) {
	s := newTestSolver(1)
	addClause(t, s, PositiveLiteral(0))

	if got := s.Solve(context.Background(), nil); got != StatusSat {
		t.Fatalf("Solve() = %s, want %s", got, StatusSat)
	}
	if model := s.Models[len(s.Models)-1]; !model[0] {
		t.Errorf("model[0] = false, want true")
	}
}

func TestSolve_TrivialUnsat(t *testing.T) {
	s := newTestSolver(1)
	addClause(t, s, PositiveLiteral(0))
	addClause(t, s, NegativeLiteral(0))

	if got := s.Solve(context.Background(), nil); got != StatusUnsat {
		t.Fatalf("Solve() = %s, want %s", got, StatusUnsat)
	}
}

func TestSolve_ImplicationChain(t *testing.T) {
	s := newTestSolver(4)
	addClause(t, s, PositiveLiteral(0), PositiveLiteral(1))
	addClause(t, s, NegativeLiteral(0), PositiveLiteral(2))
	addClause(t, s, NegativeLiteral(2), PositiveLiteral(3))

	got := s.Solve(context.Background(), []Literal{NegativeLiteral(1)})
	if got != StatusSat {
		t.Fatalf("Solve() = %s, want %s", got, StatusSat)
	}

	model := s.Models[len(s.Models)-1]
	if !model[0] || !model[2] || !model[3] {
		t.Errorf("model = %v, want variables 0, 2, 3 all true", model)
	}
	if model[1] {
		t.Errorf("model[1] = true, want false")
	}
}

func TestSolve_SingleUIPUnsat(t *testing.T) {
	s := newTestSolver(5)
	addClause(t, s, PositiveLiteral(0), PositiveLiteral(1))
	addClause(t, s, PositiveLiteral(0), PositiveLiteral(2))
	addClause(t, s, NegativeLiteral(1), NegativeLiteral(2), PositiveLiteral(3))
	addClause(t, s, NegativeLiteral(3), PositiveLiteral(4))
	addClause(t, s, NegativeLiteral(3), NegativeLiteral(4))

	if got := s.Solve(context.Background(), nil); got != StatusUnsat {
		t.Fatalf("Solve() = %s, want %s", got, StatusUnsat)
	}
}

func TestSolve_Pigeonhole3Into2(t *testing.T) {
	// Variables: p(i,j) = pigeon i in hole j, i in {0,1,2}, j in {0,1}.
	v := func(i, j int) int { return i*2 + j }
	s := newTestSolver(6)

	for i := 0; i < 3; i++ {
		addClause(t, s, PositiveLiteral(v(i, 0)), PositiveLiteral(v(i, 1)))
	}
	for j := 0; j < 2; j++ {
		for i1 := 0; i1 < 3; i1++ {
			for i2 := i1 + 1; i2 < 3; i2++ {
				addClause(t, s, NegativeLiteral(v(i1, j)), NegativeLiteral(v(i2, j)))
			}
		}
	}

	if got := s.Solve(context.Background(), nil); got != StatusUnsat {
		t.Fatalf("Solve() = %s, want %s", got, StatusUnsat)
	}
	if s.TotalConflicts >= 50 {
		t.Errorf("TotalConflicts = %d, want < 50", s.TotalConflicts)
	}
}

func TestSolve_AssumptionDrivenUnsatCore(t *testing.T) {
	s := newTestSolver(3)
	addClause(t, s, PositiveLiteral(0), PositiveLiteral(1))
	addClause(t, s, NegativeLiteral(0), PositiveLiteral(1))
	addClause(t, s, NegativeLiteral(1), PositiveLiteral(2))
	addClause(t, s, NegativeLiteral(1), NegativeLiteral(2))

	assumptions := []Literal{PositiveLiteral(0), PositiveLiteral(1)}
	got := s.Solve(context.Background(), assumptions)
	if got != StatusUnsat {
		t.Fatalf("Solve() = %s, want %s", got, StatusUnsat)
	}

	core := s.FinalConflict()
	if len(core) == 0 {
		t.Fatalf("FinalConflict() is empty, want a non-empty unsat core")
	}
	for _, l := range core {
		if l != NegativeLiteral(1) && l != NegativeLiteral(0) {
			t.Errorf("FinalConflict() contains unexpected literal %v", l)
		}
	}
}

func TestSolve_RestartStabilityMatchesFullSearch(t *testing.T) {
	clauses := random3SAT(50, 200, 1)

	full := newTestSolver(50)
	for _, c := range clauses {
		addClause(t, full, c...)
	}
	fullStatus := full.Solve(context.Background(), nil)

	restarting := newTestSolver(50)
	for _, c := range clauses {
		addClause(t, restarting, c...)
	}
	restarting.opts.RestartStrategy = RestartLuby
	restarting.restart = NewRestartController(RestartLuby)
	restarting.restart.lubyBase = 10
	restartStatus := restarting.Solve(context.Background(), nil)

	if fullStatus != restartStatus {
		t.Fatalf("full search = %s, forced-restart search = %s, want equal verdicts", fullStatus, restartStatus)
	}
}

// random3SAT deterministically generates a fixed 3-SAT instance at clause
// ratio 4.0 using a simple linear-congruential generator, so the test does
// not depend on math/rand's stream (and stays identical across Go versions).
func random3SAT(nVars, nClauses int, seed uint64) [][]Literal {
	state := seed + 1
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state >> 33
	}

	clauses := make([][]Literal, 0, nClauses)
	for i := 0; i < nClauses; i++ {
		lits := make([]Literal, 0, 3)
		for j := 0; j < 3; j++ {
			v := int(next() % uint64(nVars))
			if next()%2 == 0 {
				lits = append(lits, PositiveLiteral(v))
			} else {
				lits = append(lits, NegativeLiteral(v))
			}
		}
		clauses = append(clauses, lits)
	}
	return clauses
}
