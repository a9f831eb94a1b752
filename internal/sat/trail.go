package sat

// reasonKind tags the three cases a propagated literal's antecedent can
// take, per spec.md §3's Reason row: a branching decision (or a permanent
// level-0 unit, which shares the same representation — see spec.md §9),
// a binary clause, or a long (arena-resident) clause.
type reasonKind uint8

const (
	reasonDecision reasonKind = iota
	reasonBinary
	reasonLong
)

// Reason is the antecedent of a propagated (or decided) literal. It is a
// tagged sum type rather than an interface so that the hot propagation and
// analysis loops never allocate or type-assert; a binary reason saves one
// arena access compared to a long reason (spec.md §9).
type Reason struct {
	kind   reasonKind
	lit    Literal      // valid when kind == reasonBinary: the antecedent literal
	handle ClauseHandle // valid when kind == reasonLong
}

// VarData groups the per-variable bookkeeping described in spec.md §3. The
// solver keeps the underlying storage as parallel slices (varLevel,
// varReason, the VarOrder's scores, plus the polarity store) because the hot
// propagation loop indexes them independently and a struct-of-slices avoids
// the padding/indirection a single []VarData would add; VarData itself is
// only a logical read view assembled on demand.
type VarData struct {
	Level    int
	Reason   Reason
	Polarity bool
	Activity float64
}

// VarData returns a snapshot of the bookkeeping the solver holds for v. If
// value(v) is Unknown, Level and Reason carry no meaning (spec.md §3).
func (s *Solver) VarData(v int) VarData {
	return VarData{
		Level:    s.varLevel[v],
		Reason:   s.varReason[v],
		Polarity: s.polarity.phases[v] == True,
		Activity: s.order.scores[v],
	}
}

// decisionLevel returns the current decision level: the number of decisions
// (real or assumed) currently on the trail.
func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// newDecisionLevel pushes the current trail length as the boundary of a new
// decision level (spec.md §4.2).
func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// enqueue assigns l to True with the given reason, provided l is not
// already assigned to False (a conflict). It is a no-op success if l is
// already True. At level 0, reason is conventionally reasonDecision: the
// literal becomes a permanent unit (spec.md §4.2, §9).
func (s *Solver) enqueue(l Literal, reason Reason) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.varLevel[v] = s.decisionLevel()
		s.varReason[v] = reason
		s.trail = append(s.trail, l)
		return true
	}
}

// assume enqueues l as a new decision (real or assumed), opening a new
// decision level first.
func (s *Solver) assume(l Literal) bool {
	s.newDecisionLevel()
	return s.enqueue(l, Reason{kind: reasonDecision})
}

// undoOne undoes the most recent trail entry: the variable becomes Unknown
// again, its polarity is saved, and it is reinserted into the order heap.
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.polarity.save(v, s.VarValue(v))
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.varReason[v] = Reason{}
	s.varLevel[v] = -1
	s.order.Insert(v)

	s.trail = s.trail[:len(s.trail)-1]
}

// cancel undoes every literal trailed since the last newDecisionLevel.
func (s *Solver) cancel() {
	lim := s.trailLim[len(s.trailLim)-1]
	for len(s.trail) > lim {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil backtracks to the given decision level, undoing every literal
// trailed at a strictly higher level (spec.md §4.2). qhead is clamped so
// that qhead <= len(trail) always holds afterwards.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
	if s.qhead > len(s.trail) {
		s.qhead = len(s.trail)
	}
}
