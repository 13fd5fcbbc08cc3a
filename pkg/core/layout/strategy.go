package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/keyforge/pkg/core/transition"
)

var (
	// ErrUnknownStrategy is returned for strategies outside the enumeration.
	ErrUnknownStrategy = errors.New("layout: unknown strategy")

	// ErrNilMatrix is returned when no matrix is given.
	ErrNilMatrix = errors.New("layout: nil matrix")
)

// Strategy selects the layout algorithm.
type Strategy int

const (
	// Greedy returns the spiral placement as is.
	Greedy Strategy = iota + 1
	// BranchAndBound refines the greedy placement with [Solver].
	BranchAndBound
)

// Strategies lists every valid strategy.
func Strategies() []Strategy { return []Strategy{Greedy, BranchAndBound} }

func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "greedy"
	case BranchAndBound:
		return "branch-and-bound"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Valid reports whether s is one of [Strategies].
func (s Strategy) Valid() bool { return s == Greedy || s == BranchAndBound }

// ParseStrategy maps a name to a strategy. Accepted names are "greedy",
// "branch-and-bound", "bnb" and "qap", case-insensitive.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "greedy":
		return Greedy, nil
	case "branch-and-bound", "bnb", "qap":
		return BranchAndBound, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Result is the outcome of [Selector.Compute].
type Result struct {
	Strategy   Strategy `json:"strategy"`
	Grid       Grid     `json:"grid"`
	Cost       float64  `json:"cost"`        // average cost of Grid
	GreedyCost float64  `json:"greedy_cost"` // average cost of the greedy placement
	Stats      Stats    `json:"stats"`
}

// Selector runs the algorithm a [Strategy] names.
type Selector struct {
	Placer GreedyPlacer
	Solver SolverOptions
}

// ComputeLayout returns the grid for m under strategy.
func (s Selector) ComputeLayout(m *transition.Matrix, strategy Strategy) (Grid, error) {
	res, err := s.Compute(m, strategy)
	if err != nil {
		return Grid{}, err
	}
	return res.Grid, nil
}

// Compute places the characters of m and reports costs and search stats.
func (s Selector) Compute(m *transition.Matrix, strategy Strategy) (Result, error) {
	if !strategy.Valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	if m == nil {
		return Result{}, ErrNilMatrix
	}

	greedy := s.Placer.Place(m)
	res := Result{
		Strategy:   strategy,
		Grid:       greedy,
		GreedyCost: Evaluate(greedy, m),
	}
	res.Cost = res.GreedyCost

	if strategy == BranchAndBound {
		best, stats := Solver{Options: s.Solver}.SolveStats(m, Seed(m, greedy))
		res.Grid = best.Grid
		res.Cost = Evaluate(best.Grid, m)
		res.Stats = stats
	}
	return res, nil
}
