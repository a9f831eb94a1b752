package sat

import "math/rand/v2"

// PolarityMode selects how a decision literal's sign is chosen once the
// branching variable itself has been picked by VarOrder.
type PolarityMode uint8

const (
	// PolarityLastSaved assigns the sign the variable last held before being
	// unassigned, falling back to PolarityAlwaysTrue the first time a
	// variable is decided (spec.md §4.5's default "phase saving").
	PolarityLastSaved PolarityMode = iota
	PolarityAlwaysTrue
	PolarityAlwaysFalse
	// PolarityRandom flips a coin with probability Options.RandomPolarityFreq
	// on each decision, falling back to the last-saved phase otherwise.
	PolarityRandom
	// PolarityRotate picks the sign opposite to the variable's saved phase
	// (positive when none is saved yet), so a variable that is decided
	// repeatedly alternates sign; mostly useful for stress testing
	// restart/phase interactions.
	PolarityRotate
)

// PolarityStore remembers, per variable, the sign it was last assigned and
// decides the sign of its next decision. It is deliberately independent of
// VarOrder (see order.go) so a solver can mix any VarOrder selection policy
// with any PolarityMode.
type PolarityStore struct {
	mode   PolarityMode
	freq   float64
	phases []LBool
	rng    *rand.Rand
}

// NewPolarityStore returns an empty PolarityStore using the given mode. freq
// is the fraction of PolarityRandom decisions that actually get a coin flip
// (the rest fall back to the last-saved phase); it is ignored by every other
// mode. seed seeds the random source used by PolarityRandom; it is
// otherwise unused.
func NewPolarityStore(mode PolarityMode, freq float64, seed uint64) *PolarityStore {
	return &PolarityStore{
		mode: mode,
		freq: freq,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NewVar registers a new variable with no saved phase.
func (ps *PolarityStore) NewVar() {
	ps.phases = append(ps.phases, Unknown)
}

// save records the value v held just before being unassigned.
func (ps *PolarityStore) save(v int, val LBool) {
	ps.phases[v] = val
}

// Decide returns the decision literal for variable v, choosing its sign
// according to the configured PolarityMode.
func (ps *PolarityStore) Decide(v int) Literal {
	switch ps.mode {
	case PolarityAlwaysTrue:
		return PositiveLiteral(v)
	case PolarityAlwaysFalse:
		return NegativeLiteral(v)
	case PolarityRandom:
		if ps.rng.Float64() < ps.freq {
			if ps.rng.IntN(2) == 0 {
				return NegativeLiteral(v)
			}
			return PositiveLiteral(v)
		}
		if ps.phases[v] == False {
			return NegativeLiteral(v)
		}
		return PositiveLiteral(v)
	case PolarityRotate:
		if ps.phases[v] == True {
			return NegativeLiteral(v)
		}
		return PositiveLiteral(v)
	default: // PolarityLastSaved
		if ps.phases[v] == False {
			return NegativeLiteral(v)
		}
		return PositiveLiteral(v)
	}
}
