// Package sat is the public facade over the CDCL solver implemented in
// internal/sat. It re-exports the handful of types a caller outside this
// module's internal tree needs (Literal, Solver, Options, Status) without
// exposing the arena/trail/analysis machinery those internals depend on.
package sat

import isat "github.com/gosat-project/yass/internal/sat"

// Literal is a DIMACS-style literal: a boolean variable or its negation.
type Literal = isat.Literal

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal { return isat.PositiveLiteral(v) }

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal { return isat.NegativeLiteral(v) }

// LBool is a lifted boolean: True, False, or Unknown.
type LBool = isat.LBool

const (
	Unknown = isat.Unknown
	True    = isat.True
	False   = isat.False
)

// Status is the outcome of a Solve call.
type Status = isat.Status

const (
	StatusUnknown     = isat.StatusUnknown
	StatusSat         = isat.StatusSat
	StatusUnsat       = isat.StatusUnsat
	StatusInterrupted = isat.StatusInterrupted
)

// PolarityMode selects how a decision variable's sign is chosen.
type PolarityMode = isat.PolarityMode

const (
	PolarityLastSaved   = isat.PolarityLastSaved
	PolarityAlwaysTrue  = isat.PolarityAlwaysTrue
	PolarityAlwaysFalse = isat.PolarityAlwaysFalse
	PolarityRandom      = isat.PolarityRandom
	PolarityRotate      = isat.PolarityRotate
)

// RestartMode selects the restart schedule a Solver uses.
type RestartMode = isat.RestartMode

const (
	RestartGlucose   = isat.RestartGlucose
	RestartLuby      = isat.RestartLuby
	RestartGeometric = isat.RestartGeometric
)

// Options configures a Solver. See DefaultOptions for reasonable defaults.
type Options = isat.Options

// DefaultOptions is a reasonable starting configuration.
var DefaultOptions = isat.DefaultOptions

// Solver is a CDCL SAT solver instance.
type Solver = isat.Solver

// NewSolver returns an empty Solver configured with opts.
func NewSolver(opts Options) *Solver { return isat.NewSolver(opts) }

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver { return isat.NewDefaultSolver() }
