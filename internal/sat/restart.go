package sat

import "math"

// EMA is an exponential moving average, adapted from the teacher's
// top-level sat/avg.go (which defined it but never wired it into the
// solver). Used here to track both the long-term LBD and long-term trail
// length the Glucose restart schedule compares recent conflicts against.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay factor in (0, 1); values closer
// to 1 weight history more heavily.
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds x into the average.
func (e *EMA) Add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

// Val returns the current average, or 0 if Add has never been called.
func (e *EMA) Val() float64 {
	return e.value
}

// RestartMode selects the restart schedule a Solver uses, per spec.md §4.6.
type RestartMode uint8

const (
	// RestartGlucose restarts whenever recent conflicts' average LBD rises
	// well above the long-term average, the Glucose/picosat-style signal
	// that search has drifted into a less useful region of the tree.
	RestartGlucose RestartMode = iota
	// RestartLuby restarts on the classic Luby sequence, scaled by a base
	// conflict count.
	RestartLuby
	// RestartGeometric restarts after a conflict count that grows by a
	// constant factor after every restart.
	RestartGeometric
)

// luby returns the Luby-sequence value at index x (0-based), the standard
// formula used by MiniSat-family solvers for the Luby restart schedule.
func luby(x int) float64 {
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	return math.Pow(2, float64(seq))
}

// RestartController decides when the Solver should abandon its current
// search path and restart from decision level 0, per spec.md §4.6. It
// implements all three schedules the specification names; only one is
// active at a time, selected by Options.
type RestartController struct {
	mode RestartMode

	// Luby schedule state.
	lubyBase  int64
	lubyIndex int

	// Geometric schedule state.
	geoFirst   int64
	geoFactor  float64
	geoCurrent float64

	// Glucose LBD-based schedule state: a short sliding window of recent
	// conflicts' LBDs compared against a slow-decaying long-term average
	// (adapted from the teacher's sat/avg.go EMA, which the teacher itself
	// never wired into the solver).
	lbdWindow     *Queue[int]
	lbdWindowCap  int
	lbdWindowSum  int
	lbdLongTerm   EMA
	glueThreshold float64 // restart when shortAvg * glueThreshold >= longAvg

	// Blocking restarts: suppress a scheduled restart while the trail is
	// unusually long compared to its own long-term average, since that
	// signals the current path is making above-average progress.
	trailLongTerm     EMA
	blockingThreshold float64 // 0 disables blocking
	blockingWarmup    int64

	conflictsSinceRestart int64
	totalConflicts        int64
}

// NewRestartController returns a controller for the given mode using
// reasonable Glucose-paper-style defaults. The tuning fields are unexported,
// so only code inside this package can adjust them after construction.
func NewRestartController(mode RestartMode) *RestartController {
	return &RestartController{
		mode:              mode,
		lubyBase:          100,
		geoFirst:          100,
		geoFactor:         1.1,
		geoCurrent:        100,
		lbdWindow:         NewQueue[int](64),
		lbdWindowCap:      50,
		lbdLongTerm:       NewEMA(1.0 - 1.0/30000.0),
		glueThreshold:     0.8,
		trailLongTerm:     NewEMA(1.0 - 1.0/30000.0),
		blockingThreshold: 1.4,
		blockingWarmup:    5000,
	}
}

// OnConflict records a conflict's LBD and the trail length it occurred at.
// Must be called exactly once per conflict, before ShouldRestart is
// consulted.
func (rc *RestartController) OnConflict(lbd int, trailLen int) {
	rc.conflictsSinceRestart++
	rc.totalConflicts++

	rc.lbdLongTerm.Add(float64(lbd))
	rc.trailLongTerm.Add(float64(trailLen))

	rc.lbdWindow.Push(lbd)
	rc.lbdWindowSum += lbd
	if rc.lbdWindow.Size() > rc.lbdWindowCap {
		rc.lbdWindowSum -= rc.lbdWindow.Pop()
	}
}

// ShouldRestart reports whether the Solver should restart now, given the
// current trail length (used only by the Glucose schedule's blocking
// check).
func (rc *RestartController) ShouldRestart(trailLen int) bool {
	switch rc.mode {
	case RestartLuby:
		return float64(rc.conflictsSinceRestart) >= luby(rc.lubyIndex)*float64(rc.lubyBase)
	case RestartGeometric:
		return float64(rc.conflictsSinceRestart) >= rc.geoCurrent
	default: // RestartGlucose
		if rc.lbdWindow.Size() < rc.lbdWindowCap {
			return false
		}
		shortAvg := float64(rc.lbdWindowSum) / float64(rc.lbdWindow.Size())
		if shortAvg*rc.glueThreshold < rc.lbdLongTerm.Val() {
			return false
		}
		if rc.blockingThreshold > 0 && rc.totalConflicts > rc.blockingWarmup {
			if float64(trailLen) > rc.blockingThreshold*rc.trailLongTerm.Val() {
				return false // blocked: this path looks unusually productive
			}
		}
		return true
	}
}

// OnRestart resets the per-cycle counters and advances whichever schedule
// is active. Must be called whenever the Solver actually performs a
// restart (independent of ShouldRestart, so callers can force a restart on
// other grounds, e.g. assumption changes, without corrupting the schedule).
func (rc *RestartController) OnRestart() {
	rc.conflictsSinceRestart = 0
	switch rc.mode {
	case RestartLuby:
		rc.lubyIndex++
	case RestartGeometric:
		rc.geoCurrent *= rc.geoFactor
	default: // RestartGlucose
		rc.lbdWindow.Clear()
		rc.lbdWindowSum = 0
	}
}
