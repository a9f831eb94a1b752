package sat

// watcher represents a clause attached to the watch list of a literal: the
// clause is examined whenever that literal becomes True (i.e. the watch
// list for literal L holds watchers for clauses watching ¬L, which L
// becoming True falsifies).
type watcher struct {
	kind refKind

	// Binary clauses carry their other literal directly and never touch
	// the arena (spec.md §3's Watch list row): this saves an arena access
	// per propagation on the hot path.
	other Literal

	// Long clauses are identified by handle, with a cached blocker literal
	// consulted before the clause body is loaded (spec.md §4.3 step 3).
	handle  ClauseHandle
	blocker Literal
}

// watchBinary registers the binary clause {a, b} on both of its watch
// lists. Binary clauses need no arena entry: the watcher pair is the
// entire representation.
func (s *Solver) watchBinary(a, b Literal, learned bool) {
	s.addWatcher(a.Opposite(), watcher{kind: refBinary, other: b})
	s.addWatcher(b.Opposite(), watcher{kind: refBinary, other: a})
	if learned {
		s.learntBinaries++
	} else {
		s.binaryClauses = append(s.binaryClauses, [2]Literal{a, b})
	}
}

// watchLong registers a watch edge for the clause at handle on the watch
// list of watch, caching blocker.
func (s *Solver) watchLong(handle ClauseHandle, watch Literal, blocker Literal) {
	s.addWatcher(watch, watcher{kind: refLong, handle: handle, blocker: blocker})
}

// addWatcher appends w to the watch list of l, keeping binary watchers
// ahead of long watchers so that short reasons propagate first (spec.md
// §4.3 "Binary preference").
func (s *Solver) addWatcher(l Literal, w watcher) {
	ws := s.watchers[l]
	if w.kind == refBinary {
		nBin := 0
		for nBin < len(ws) && ws[nBin].kind == refBinary {
			nBin++
		}
		ws = append(ws, watcher{})
		copy(ws[nBin+1:], ws[nBin:])
		ws[nBin] = w
	} else {
		ws = append(ws, w)
	}
	s.watchers[l] = ws
}

// unwatchLong removes the watcher for handle from the watch list of l.
func (s *Solver) unwatchLong(handle ClauseHandle, l Literal) {
	ws := s.watchers[l]
	j := 0
	for i := 0; i < len(ws); i++ {
		if ws[i].kind == refLong && ws[i].handle == handle {
			continue
		}
		ws[j] = ws[i]
		j++
	}
	s.watchers[l] = ws[:j]
}
