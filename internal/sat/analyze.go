package sat

// explainConflict returns the literals responsible for a conflict, i.e. the
// negation of every literal in the violated clause (all of which are
// currently True). The returned slice aliases s.tmpReason and is only valid
// until the next explain call.
func (s *Solver) explainConflict(c *Conflict) []Literal {
	s.tmpReason = s.tmpReason[:0]
	if c.binary {
		s.tmpReason = append(s.tmpReason, c.lits[0].Opposite(), c.lits[1].Opposite())
		return s.tmpReason
	}

	cl := s.arena.Get(c.handle)
	if cl.learned {
		s.bumpClauseActivity(cl)
	}
	for _, l := range cl.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	return s.tmpReason
}

// explainReason returns the literals that forced the propagation explained
// by r: every literal of the antecedent clause except the propagated one,
// negated. The returned slice aliases s.tmpReason.
func (s *Solver) explainReason(r Reason) []Literal {
	s.tmpReason = s.tmpReason[:0]
	switch r.kind {
	case reasonBinary:
		s.tmpReason = append(s.tmpReason, r.lit.Opposite())
	case reasonLong:
		cl := s.arena.Get(r.handle)
		if cl.learned {
			s.bumpClauseActivity(cl)
		}
		for _, l := range cl.literals[1:] {
			s.tmpReason = append(s.tmpReason, l.Opposite())
		}
	}
	return s.tmpReason
}

func abstractLevelBit(level int) uint64 {
	return uint64(1) << (uint(level) % 64)
}

// analyze builds the 1-UIP learned clause from a conflict found at the
// current decision level (spec.md §4.4). It returns the learned clause (with
// the asserting literal at position 0 and the literal that determines the
// backjump level at position 1), the level to backjump to, and the clause's
// LBD (glue).
func (s *Solver) analyze(confl *Conflict) (learned []Literal, backjumpLevel int, lbd int) {
	nImplicationPoints := 0

	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1) // placeholder for the asserting literal

	nextLiteral := len(s.trail) - 1
	s.seenVar.Clear()

	var abstractLevel uint64
	var reason Reason
	lits := s.explainConflict(confl)

	l := Literal(-1)
	for {
		for _, q := range lits {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.bumpVarActivity(v)

			lvl := s.varLevel[v]
			if lvl == s.decisionLevel() {
				nImplicationPoints++
				continue
			}
			if lvl > 0 {
				s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
				abstractLevel |= abstractLevelBit(lvl)
			}
		}

		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			reason = s.varReason[v]
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
		lits = s.explainReason(reason)
	}

	s.tmpLearnts[0] = l.Opposite()

	learned = s.minimize(s.tmpLearnts, abstractLevel)
	lbd = s.computeLBD(learned)
	backjumpLevel = s.selectBackjumpWatch(learned)

	s.tryOnTheFlySubsumption(confl, learned)

	s.seenVar.Clear()
	return learned, backjumpLevel, lbd
}

// litRedundant implements the recursive self-subsumption check of spec.md
// §4.4: literal l (already part of the tentative learned clause) is
// redundant if every literal of its reason clause is itself either already
// kept or recursively redundant, bounded by the abstractLevel bitmask to
// cut off reasons that clearly reach outside the learned clause's levels.
func (s *Solver) litRedundant(l Literal, abstractLevel uint64) bool {
	v := l.VarID()
	// A variable that turns out not to be redundant stays tagKept if it is a
	// literal of the learned clause and goes back to tagUnseen otherwise, so
	// it is never mistaken for a literal of the learned clause.
	failTag := tagUnseen
	switch s.tags.Get(v) {
	case tagRedundant:
		return true
	case tagOnStack:
		return false
	case tagKept:
		failTag = tagKept
	}

	reason := s.varReason[v]
	if reason.kind == reasonDecision {
		s.tags.Set(v, failTag)
		return false
	}

	s.tags.Set(v, tagOnStack)
	lits := append([]Literal(nil), s.explainReason(reason)...)

	for _, q := range lits {
		qv := q.VarID()
		if qv == v {
			continue
		}
		if s.tags.Get(qv) == tagKept || s.tags.Get(qv) == tagRedundant {
			continue
		}
		lvl := s.varLevel[qv]
		if lvl == 0 {
			continue
		}
		if abstractLevel&abstractLevelBit(lvl) == 0 {
			s.tags.Set(v, failTag)
			return false
		}
		if !s.litRedundant(q, abstractLevel) {
			s.tags.Set(v, failTag)
			return false
		}
	}

	s.tags.Set(v, tagRedundant)
	return true
}

// binaryMinimizable implements spec.md §4.4's binary-reason minimization:
// literal l is redundant if some binary clause {¬l, c} exists where ¬c is
// already a literal of the (recursively minimized) learned clause.
func (s *Solver) binaryMinimizable(l Literal) bool {
	for _, w := range s.watchers[l] {
		if w.kind != refBinary {
			continue
		}
		c := w.other
		if s.tags.Get(c.VarID()) == tagKept && s.analyzeLitOf[c.VarID()] == c.Opposite() {
			return true
		}
	}
	return false
}

// minimize applies recursive self-subsumption followed by binary-reason
// minimization to out[1:], keeping out[0] (the asserting literal). It
// returns a freshly allocated slice owned by the caller.
func (s *Solver) minimize(out []Literal, abstractLevel uint64) []Literal {
	s.ensureAnalyzeScratch()

	s.tags.Clear()
	for _, l := range out {
		s.tags.Set(l.VarID(), tagKept)
		s.analyzeLitOf[l.VarID()] = l
	}

	result := append(s.minimizeBuf[:0], out[0])
	for _, l := range out[1:] {
		if s.litRedundant(l, abstractLevel) {
			continue
		}
		result = append(result, l)
	}
	s.minimizeBuf = result

	s.tags.Clear()
	for _, l := range result {
		s.tags.Set(l.VarID(), tagKept)
		s.analyzeLitOf[l.VarID()] = l
	}

	final := append(s.minimizeBuf2[:0], result[0])
	for _, l := range result[1:] {
		if s.binaryMinimizable(l) {
			continue
		}
		final = append(final, l)
	}
	s.minimizeBuf2 = final

	return append([]Literal(nil), final...)
}

// computeLBD counts the number of distinct decision levels represented in
// lits (spec.md §4.4's glue), using a timestamped per-level marker array
// cleared in O(1) the same way ResetSet clears in O(1).
func (s *Solver) computeLBD(lits []Literal) int {
	s.lbdStamp++
	if s.lbdStamp == 0 {
		for i := range s.lbdMarks {
			s.lbdMarks[i] = 0
		}
		s.lbdStamp = 1
	}

	count := 0
	for _, l := range lits {
		lvl := s.varLevel[l.VarID()]
		if lvl <= 0 {
			continue
		}
		for lvl >= len(s.lbdMarks) {
			s.lbdMarks = append(s.lbdMarks, 0)
		}
		if s.lbdMarks[lvl] != s.lbdStamp {
			s.lbdMarks[lvl] = s.lbdStamp
			count++
		}
	}
	return count
}

// selectBackjumpWatch moves the literal with the second-highest decision
// level to position 1 of learned (spec.md §4.4 "Backjump selection") and
// returns that level, or 0 if the clause is a unit.
func (s *Solver) selectBackjumpWatch(learned []Literal) int {
	if len(learned) <= 1 {
		return 0
	}
	maxIdx := 1
	maxLevel := s.varLevel[learned[1].VarID()]
	for i := 2; i < len(learned); i++ {
		if lvl := s.varLevel[learned[i].VarID()]; lvl > maxLevel {
			maxLevel = lvl
			maxIdx = i
		}
	}
	learned[1], learned[maxIdx] = learned[maxIdx], learned[1]
	return maxLevel
}

// tryOnTheFlySubsumption implements spec.md §4.4's on-the-fly subsumption:
// when the learned clause is a strict, literal-for-literal subset of the
// original (already-learned, arena-resident) conflict clause, the original
// clause is rewritten in place to the learned clause and re-watched. The
// caller still records the learned clause as a new clause, so the database
// then holds two identical copies of it.
func (s *Solver) tryOnTheFlySubsumption(confl *Conflict, learned []Literal) {
	if confl.binary || len(learned) < 2 {
		return
	}
	c := s.arena.Get(confl.handle)
	if !c.learned || len(learned) >= len(c.literals) {
		return
	}

	member := make(map[Literal]bool, len(c.literals))
	for _, l := range c.literals {
		member[l] = true
	}
	for _, l := range learned {
		if !member[l] {
			return
		}
	}

	s.unwatchLong(confl.handle, c.literals[0].Opposite())
	s.unwatchLong(confl.handle, c.literals[1].Opposite())

	c.literals = append(c.literals[:0], learned...)
	c.prevPos = 2

	s.watchLong(confl.handle, c.literals[0].Opposite(), c.literals[1])
	s.watchLong(confl.handle, c.literals[1].Opposite(), c.literals[0])
}

// analyzeFinalSeeded walks the trail backward from its end, collecting the
// negation of every level>0 decision literal reachable from the given seed
// variables through the implication graph. It is the restricted analysis
// mode spec.md §4.7 and §6 describe for assumption failures: unlike
// analyze, it does not stop at the first UIP and does not require the
// conflict to be at the current decision level.
func (s *Solver) analyzeFinalSeeded(seedVars []int) []Literal {
	out := []Literal{}
	s.seenVar.Clear()
	for _, v := range seedVars {
		if s.varLevel[v] > 0 {
			s.seenVar.Add(v)
		}
	}

	for i := len(s.trail) - 1; i >= 0; i-- {
		l := s.trail[i]
		v := l.VarID()
		if !s.seenVar.Contains(v) {
			continue
		}

		r := s.varReason[v]
		if r.kind == reasonDecision {
			out = append(out, l.Opposite())
			continue
		}
		for _, q := range s.explainReason(r) {
			if s.varLevel[q.VarID()] > 0 {
				s.seenVar.Add(q.VarID())
			}
		}
	}

	return out
}

// analyzeFinalForLiteral is analyzeFinalSeeded for the common case of a
// single falsified assumption literal p. If p's own reason is a decision,
// the walk naturally yields p itself (the trail entry for p's variable
// resolves to p under the reasonDecision branch); otherwise it yields
// whichever earlier assumptions actually forced p false.
func (s *Solver) analyzeFinalForLiteral(p Literal) []Literal {
	return s.analyzeFinalSeeded([]int{p.VarID()})
}

// analyzeFinalFromConflict is analyzeFinalSeeded seeded from a Propagate
// conflict discovered entirely within the assumption-decision region (no
// real decision has been made yet).
func (s *Solver) analyzeFinalFromConflict(confl *Conflict) []Literal {
	reasons := s.explainConflict(confl)
	seeds := make([]int, 0, len(reasons))
	for _, q := range reasons {
		seeds = append(seeds, q.VarID())
	}
	return s.analyzeFinalSeeded(seeds)
}

func (s *Solver) ensureAnalyzeScratch() {
	for len(s.analyzeLitOf) < len(s.varLevel) {
		s.analyzeLitOf = append(s.analyzeLitOf, 0)
	}
}
