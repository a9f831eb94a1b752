package sat

// refKind distinguishes the three outcomes of adding a clause: it collapsed
// to nothing observable (satisfied/tautological/unit), it is represented
// purely by watchers (binary), or it lives in the arena (long, size >= 3).
type refKind uint8

const (
	refNone refKind = iota
	refBinary
	refLong
)

// clauseRef names where a just-added clause ended up, mirroring spec.md's
// §3 Clause/Watcher split between binary clauses (watcher-only) and long
// clauses (arena-resident).
type clauseRef struct {
	kind    refKind
	handle  ClauseHandle // valid when kind == refLong
	binLits [2]Literal   // valid when kind == refBinary
}

// newClause builds a clause from tmpLiterals, dedupes/simplifies it against
// the current (root-level) assignment when learned is false, and attaches
// it to the watch lists. It returns ok=false only when the clause is, or
// has become, empty (the formula is UNSAT). tmpLiterals may be reordered or
// shortened in place, exactly as the teacher's NewClause does.
func newClause(s *Solver, tmpLiterals []Literal, learned bool, glue int) (clauseRef, bool) {
	size := len(tmpLiterals)

	if !learned {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			// If the opposite literal is in the clause, then the clause is
			// always true.
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return clauseRef{}, true
			}

			// Remove the literal if it is already present.
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}

			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return clauseRef{}, true // clause is already satisfied
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return clauseRef{}, false
	case 1:
		return clauseRef{}, s.enqueue(tmpLiterals[0], Reason{})
	case 2:
		s.watchBinary(tmpLiterals[0], tmpLiterals[1], learned)
		return clauseRef{kind: refBinary, binLits: [2]Literal{tmpLiterals[0], tmpLiterals[1]}}, true
	default:
		h := s.arena.Allocate(tmpLiterals, learned)
		c := s.arena.Get(h)
		c.glue = glue
		c.tier = classifyTier(glue, s.opts.ClauseTierGlueLimits)
		c.lastUsedConflict = s.TotalConflicts

		if learned {
			// Watch the asserting literal and the literal with the highest
			// decision level among the rest, so the clause is immediately
			// unit-propagating after the upcoming backjump.
			maxLevel := -1
			wl := 1
			for i := 1; i < len(c.literals); i++ {
				if level := s.varLevel[c.literals[i].VarID()]; level > maxLevel {
					maxLevel = level
					wl = i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.watchLong(h, c.literals[0].Opposite(), c.literals[1])
		s.watchLong(h, c.literals[1].Opposite(), c.literals[0])

		return clauseRef{kind: refLong, handle: h}, true
	}
}

// simplify removes literals falsified at the root level and reports
// whether the clause is satisfied (and can therefore be dropped).
func (c *Clause) simplify(s *Solver) bool {
	j := 0
	for i := 0; i < len(c.literals); i++ {
		switch s.LitValue(c.literals[i]) {
		case True:
			return true
		case False:
			// discard the literal
		case Unknown:
			c.literals[j] = c.literals[i]
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}
