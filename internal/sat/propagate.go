package sat

// Conflict is a conflicting clause returned by Propagate. It is returned by
// value (spec.md §7: "conflicts are returned by value, not raised"), with a
// dedicated binary representation so the common case needs no arena access.
type Conflict struct {
	binary bool
	lits   [2]Literal   // valid when binary: both literals are False
	handle ClauseHandle // valid when !binary
}

// Propagate drives Boolean constraint propagation over the watch lists,
// starting at the trail position recorded in qhead, until either no unit
// propagations remain (qhead reaches the end of the trail) or some clause
// becomes falsified. It implements the read/write in-place watch-list
// cursor described in spec.md §4.3 and §9: this is the propagator's
// defining trick and must be reproduced faithfully to get the expected
// constant factors (a naive build-a-new-list approach is correct but
// several times slower).
func (s *Solver) Propagate() *Conflict {
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++

		ws := s.watchers[p]
		s.tmpWatchers = append(s.tmpWatchers[:0], ws...)
		s.watchers[p] = s.watchers[p][:0]

		for i := 0; i < len(s.tmpWatchers); i++ {
			w := s.tmpWatchers[i]

			if w.kind == refBinary {
				switch s.LitValue(w.other) {
				case True:
					s.watchers[p] = append(s.watchers[p], w)
				case False:
					s.watchers[p] = append(s.watchers[p], s.tmpWatchers[i+1:]...)
					s.qhead = len(s.trail)
					return &Conflict{binary: true, lits: [2]Literal{p.Opposite(), w.other}}
				default:
					s.watchers[p] = append(s.watchers[p], w)
					s.enqueue(w.other, Reason{kind: reasonBinary, lit: p.Opposite()})
				}
				continue
			}

			// Fast skip: the blocker is a literal known to be in the
			// clause; if it is already True there is no need to load the
			// clause at all (spec.md §4.3 step 3).
			if s.LitValue(w.blocker) == True {
				s.watchers[p] = append(s.watchers[p], w)
				continue
			}

			c := s.arena.Get(w.handle)

			// Make sure the literal being falsified occupies slot 1, so
			// slot 0 is always the candidate to become unit.
			opp := p.Opposite()
			if c.literals[0] == opp {
				c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
			}

			if s.LitValue(c.literals[0]) == True {
				s.watchers[p] = append(s.watchers[p], watcher{kind: refLong, handle: w.handle, blocker: c.literals[0]})
				continue
			}

			if s.findNewWatch(c, w.handle) {
				continue
			}

			// No replacement: the clause is unit on slot 0.
			s.watchers[p] = append(s.watchers[p], watcher{kind: refLong, handle: w.handle, blocker: c.literals[0]})
			if s.LitValue(c.literals[0]) == False {
				s.watchers[p] = append(s.watchers[p], s.tmpWatchers[i+1:]...)
				s.qhead = len(s.trail)
				return &Conflict{handle: w.handle}
			}
			if c.learned {
				c.lastUsedConflict = s.TotalConflicts
			}
			s.enqueue(c.literals[0], Reason{kind: reasonLong, handle: w.handle})
		}
	}

	return nil
}

// findNewWatch scans c.literals[2:] for a literal that is not False,
// starting from the clause's cached prevPos (an optimization adapted from
// the teacher's alternate Clause implementation, sat/clauses.go). If one is
// found it is swapped into slot 1 and a new watch edge is registered.
func (s *Solver) findNewWatch(c *Clause, handle ClauseHandle) bool {
	if c.prevPos >= len(c.literals) || c.prevPos < 2 {
		c.prevPos = 2
	}

	for i := c.prevPos; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			s.watchLong(handle, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}
	for i := 2; i < c.prevPos; i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			s.watchLong(handle, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}
	return false
}
