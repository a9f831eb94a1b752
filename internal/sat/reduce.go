package sat

import "sort"

// ReduceDB periodically thins the learned clause database, per spec.md
// §4.6's three-tier policy: TierCore clauses are permanent, TierMid clauses
// age into TierLocal once they have gone unused as a reason for too long,
// and TierLocal clauses are the pool ReduceDB actually removes from, worst
// glue (then worst size) first. Locked clauses (currently a propagation
// reason) and one-shot protected clauses are never removed in the pass
// that protected them.
func (s *Solver) ReduceDB() {
	for _, h := range s.learnts {
		c := s.arena.Get(h)
		if c.deleted || c.tier != TierMid {
			continue
		}
		if s.TotalConflicts-c.lastUsedConflict > s.opts.TierMidMaxAge {
			c.tier = TierLocal
		}
	}

	type candidate struct {
		handle ClauseHandle
		clause *Clause
	}
	candidates := make([]candidate, 0, len(s.learnts))
	for _, h := range s.learnts {
		c := s.arena.Get(h)
		if c.deleted || c.tier != TierLocal || c.Locked(s) {
			continue
		}
		if c.protectd {
			c.protectd = false
			continue
		}
		candidates = append(candidates, candidate{h, c})
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i].clause, candidates[j].clause
		if ci.glue != cj.glue {
			return ci.glue > cj.glue // smaller glue is better: worse (higher) glue removed first
		}
		return len(ci.literals) > len(cj.literals) // worse (longer) clause removed first
	})

	toRemove := make(map[ClauseHandle]bool, len(candidates)/2)
	for i := 0; i < len(candidates)/2; i++ {
		toRemove[candidates[i].handle] = true
	}

	kept := s.learnts[:0]
	for _, h := range s.learnts {
		if !toRemove[h] {
			kept = append(kept, h)
			continue
		}
		c := s.arena.Get(h)
		s.unwatchLong(h, c.literals[0].Opposite())
		s.unwatchLong(h, c.literals[1].Opposite())
		s.arena.Free(h)
	}
	s.learnts = kept

	if s.arena.DeadFraction() > s.opts.CompactionDeadFraction {
		s.compactArena()
	}
}

// compactArena reclaims the slots ReduceDB and Free left behind, rewriting
// every stored ClauseHandle (learnts, problem clauses, watch lists,
// reasons) to match, per spec.md §4.1's Compact contract.
func (s *Solver) compactArena() {
	live := make([]ClauseHandle, 0, len(s.learnts)+len(s.problemClauses))
	live = append(live, s.problemClauses...)
	live = append(live, s.learnts...)

	remap := s.arena.Compact(live)

	for i, h := range s.learnts {
		s.learnts[i] = remap[h]
	}
	for i, h := range s.problemClauses {
		s.problemClauses[i] = remap[h]
	}
	for l := range s.watchers {
		ws := s.watchers[l]
		for i := range ws {
			if ws[i].kind == refLong {
				ws[i].handle = remap[ws[i].handle]
			}
		}
	}
	for v := range s.varReason {
		if s.varReason[v].kind == reasonLong {
			s.varReason[v].handle = remap[s.varReason[v].handle]
		}
	}
}

// bumpClauseActivity increases a learned clause's activity, rescaling every
// learned clause's activity if any would overflow (mirrors bumpVarActivity,
// spec.md §4.5 applied to clauses rather than variables).
func (s *Solver) bumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity <= 1e100 {
		return
	}
	s.clauseInc *= 1e-100
	for _, h := range s.learnts {
		s.arena.Get(h).activity *= 1e-100
	}
}
