package sat

// ClauseHandle is a stable reference to a clause stored in an Arena. It
// remains valid until the next call to Arena.Compact; a long clause with
// size >= 3 always lives behind a handle, while binary clauses are
// represented only as watcher entries and never allocated in the arena (see
// watch.go).
type ClauseHandle uint32

// NullHandle is the reserved handle value that never refers to a clause.
const NullHandle ClauseHandle = 0

// LearnedTier classifies a learnt clause by the quality of its glue (LBD),
// see tier.go for the classification thresholds and Options for the
// configured cutoffs.
type LearnedTier uint8

const (
	// TierCore clauses have a low glue and are kept for the life of the
	// solver.
	TierCore LearnedTier = iota
	// TierMid clauses are kept until they have not been used as a reason
	// for a configured number of conflicts, then demoted to TierLocal.
	TierMid
	// TierLocal clauses are the only ones ReduceDB considers for removal.
	TierLocal
)

// Clause is a clause record owned by an Arena. The first two entries of
// literals are always the currently-watched pair for clauses of size >= 3;
// for clauses the arena stores (size >= 3), both entries participate in two
// watch edges maintained by watch.go.
type Clause struct {
	literals []Literal

	learned  bool
	deleted  bool
	protectd bool // protected from the next ReduceDB pass (one-shot)

	glue     int
	activity float64

	// lastUsedConflict records the TotalConflicts value at which this
	// clause was created or last used as a propagation reason; used to age
	// tier-1 clauses out per spec.md §4.6. The glue is never recomputed.
	lastUsedConflict int64

	tier LearnedTier

	// prevPos caches the position (in [2, len(literals))) from which the
	// propagator should resume its search for a new literal to watch,
	// adapted from the teacher's alternate Clause implementation
	// (sat/clauses.go's prevPos field) to avoid rescanning literals known
	// to still be false.
	prevPos int

	// sliceRef is the pooled backing array literals was allocated from; it
	// is returned to the pool when the clause is freed.
	sliceRef *[]Literal
}

func (c *Clause) Len() int { return len(c.literals) }

// Locked reports whether the clause is currently the reason for the
// assignment of its first watched literal, and therefore cannot be removed
// by ReduceDB or Arena.Compact without first detaching it.
func (c *Clause) Locked(s *Solver) bool {
	if c.deleted || len(c.literals) == 0 {
		return false
	}
	v := c.literals[0].VarID()
	r := s.varReason[v]
	return r.kind == reasonLong && s.arena.clauses[r.handle] == c
}

// Arena is a contiguous backing store for clauses with stable ClauseHandle
// references. It is implemented as a growable slice of *Clause records: Go
// slices already provide the amortized-O(1) contiguous allocation the
// specification asks for, so handles are simply indices rather than raw
// byte offsets (see DESIGN.md for why this is preferred over a hand-rolled
// byte-packed arena).
type Arena struct {
	clauses []*Clause // index 0 is an unused sentinel so NullHandle is never a live clause
	wasted  int       // number of freed (but not yet compacted) slots
}

// NewArena returns an empty, initialized Arena.
func NewArena() *Arena {
	return &Arena{clauses: make([]*Clause, 1)}
}

// Allocate reserves space for, and writes, a new clause, returning its
// stable handle. The literal storage is drawn from the capacity-bucketed
// slice pool (alloc.go, adapted from the teacher's clauses_alloc.go) rather
// than freshly made every time; the caller retains ownership of lits.
func (a *Arena) Allocate(lits []Literal, learned bool) ClauseHandle {
	ref := allocSlice(len(lits))
	buf := append((*ref)[:0], lits...)
	c := &Clause{
		literals: buf,
		sliceRef: ref,
		learned:  learned,
		prevPos:  2,
	}
	a.clauses = append(a.clauses, c)
	return ClauseHandle(len(a.clauses) - 1)
}

// Get dereferences a handle. The returned pointer is only valid until the
// next Compact call.
func (a *Arena) Get(h ClauseHandle) *Clause {
	return a.clauses[h]
}

// Free marks the clause dead. Its memory is not reclaimed until Compact
// runs; the caller must have already detached the clause from all watch
// lists and made sure it is not Locked.
func (a *Arena) Free(h ClauseHandle) {
	c := a.clauses[h]
	c.deleted = true
	if c.sliceRef != nil {
		freeSlice(c.sliceRef)
		c.sliceRef = nil
	}
	c.literals = nil
	a.wasted++
}

// DeadFraction returns the fraction of allocated slots that are dead,
// used to decide when Compact is worth running.
func (a *Arena) DeadFraction() float64 {
	if len(a.clauses) <= 1 {
		return 0
	}
	return float64(a.wasted) / float64(len(a.clauses)-1)
}

// Compact copies every live clause referenced by live (in order) into a
// fresh backing slice and returns a map from every old handle to its new
// handle. The caller must rewrite every ClauseHandle it holds (watch lists,
// reasons, tier lists) using the returned map before resuming search; handle
// values are otherwise reused across a compaction.
func (a *Arena) Compact(live []ClauseHandle) map[ClauseHandle]ClauseHandle {
	remap := make(map[ClauseHandle]ClauseHandle, len(live)+1)
	remap[NullHandle] = NullHandle

	fresh := make([]*Clause, 1, len(live)+1)
	for _, old := range live {
		fresh = append(fresh, a.clauses[old])
		remap[old] = ClauseHandle(len(fresh) - 1)
	}

	a.clauses = fresh
	a.wasted = 0
	return remap
}
