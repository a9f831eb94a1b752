package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder maintains a heap of decision candidates ordered by activity
// score, adapted from the teacher's ordering.go. Every unassigned variable
// is in the heap; variables assigned by propagation stay in it until they
// are popped. Unlike the teacher's
// VarOrder, phase/polarity bookkeeping is split out into its own
// PolarityStore (polarity.go): spec.md's branching heuristic treats "which
// variable" and "which sign" as independently configurable concerns, so a
// single combined struct would conflate two orthogonal Options knobs.
type VarOrder struct {
	heap *yagh.IntMap[float64]

	scores   []float64 // in [0, 1e100)
	scoreInc float64   // in (0, 1e100)
	decay    float64   // in (0, 1]
}

// NewVarOrder returns an empty VarOrder with the given score decay.
func NewVarOrder(decay float64) *VarOrder {
	return &VarOrder{
		heap:     yagh.New[float64](0),
		scoreInc: 1,
		decay:    decay,
	}
}

// NewVar registers a new variable with the given initial activity score,
// inserted into the heap so it is immediately eligible for selection.
func (vo *VarOrder) NewVar(initScore float64) {
	v := len(vo.scores)
	vo.scores = append(vo.scores, initScore)
	vo.heap.GrowBy(1)
	vo.heap.Put(v, -initScore)
}

// Insert adds v back into the set of decision candidates, using its current
// score. Called whenever v becomes unassigned (spec.md §4.2's undo step).
func (vo *VarOrder) Insert(v int) {
	vo.heap.Put(v, -vo.scores[v])
}

// Remove takes v out of the candidate set without forgetting its score.
// The solver does not call it: enqueue leaves assigned variables in the
// heap.
func (vo *VarOrder) Remove(v int) {
	vo.heap.Remove(v)
}

// BumpScore increases v's activity, rescaling every score if any would
// otherwise overflow float64's useful range (spec.md §4.5's VSIDS bump).
func (vo *VarOrder) BumpScore(v int) {
	vo.scores[v] += vo.scoreInc
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.scores[v])
	}
	if vo.scores[v] > 1e100 {
		vo.rescale()
	}
}

// DecayScores shrinks the effective weight of past activity bumps relative
// to future ones by inflating the increment rather than deflating every
// score (spec.md §4.5).
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.decay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		vo.scores[v] = sc * 1e-100
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -vo.scores[v])
		}
	}
}

// PopMax removes and returns the variable with the highest activity score
// in the heap. That variable may already be assigned by propagation, so
// callers skip assigned results. ok is false only when the heap is empty.
func (vo *VarOrder) PopMax() (v int, ok bool) {
	next, ok := vo.heap.Pop()
	if !ok {
		return 0, false
	}
	return next.Elem, true
}
