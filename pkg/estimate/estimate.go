package estimate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/pkg/score"
	"github.com/ivfodds/ivfodds/pkg/types"
)

// Request is the calculator input as a user submits it.
type Request struct {
	Age          int
	Weight       int // pounds
	HeightFeet   int
	HeightInches int

	// EggSource is "own_eggs" or "donor_eggs" (or the short forms).
	EggSource string

	// IVFCycles is the number of previous IVF cycles; any positive count
	// means IVF was attempted before. Only used for own eggs.
	IVFCycles int

	// Reasons holds zero or more category names, or the single sentinel
	// "no_reason".
	Reasons []string

	PriorPregnancies string
	PriorBirths      string
}

// Result is the outcome of one estimate.
type Result struct {
	// SuccessRate is the estimated live-birth chance in percent, 2 places.
	SuccessRate decimal.Decimal

	// BMI is the unrounded body-mass index used in the formula.
	BMI decimal.Decimal

	Criteria formula.Criteria
	Formula  *formula.Row

	// Components is the full formula breakdown, Score included.
	Components score.Output
}

// Estimator scores requests against one immutable table.
type Estimator struct {
	table *formula.Table
}

// New returns an Estimator bound to table.
func New(table *formula.Table) *Estimator {
	return &Estimator{table: table}
}

// Table returns the table the estimator was built with.
func (e *Estimator) Table() *formula.Table { return e.table }

// Estimate validates req and evaluates the matching formula.
//
// Errors wrap types.ErrInvalidInput for bad fields, types.ErrNoMatch when the
// table has no row for the derived criteria and types.ErrAmbiguous when it has
// several.
func (e *Estimator) Estimate(req Request) (*Result, error) {
	if req.Age < 0 {
		return nil, fmt.Errorf("%w: age %d must not be negative", types.ErrInvalidInput, req.Age)
	}
	if req.IVFCycles < 0 {
		return nil, fmt.Errorf("%w: ivf_cycles %d must not be negative", types.ErrInvalidInput, req.IVFCycles)
	}
	src, err := types.ParseEggSource(req.EggSource)
	if err != nil {
		return nil, err
	}
	reasons, err := ParseReasons(req.Reasons)
	if err != nil {
		return nil, err
	}

	bmi, err := score.BMI(req.Weight, req.HeightFeet, req.HeightInches)
	if err != nil {
		return nil, err
	}

	crit := formula.Criteria{
		EggSource:    src,
		AttemptedIVF: src == types.EggSourceOwn && req.IVFCycles > 0,
		ReasonKnown:  len(reasons) > 0,
	}
	row, err := e.table.Select(crit)
	if err != nil {
		return nil, err
	}

	out, err := score.Compute(score.Input{
		Age:              req.Age,
		BMI:              bmi,
		Reasons:          reasons,
		PriorPregnancies: req.PriorPregnancies,
		PriorLiveBirths:  req.PriorBirths,
	}, row)
	if err != nil {
		return nil, err
	}

	return &Result{
		SuccessRate: out.SuccessRate,
		BMI:         bmi,
		Criteria:    crit,
		Formula:     row,
		Components:  out,
	}, nil
}

// ParseReasons converts the submitted reason names into categories.
//
// An empty list and the lone sentinel "no_reason" both mean the cause is
// unknown and yield no categories. The sentinel mixed with real categories is
// rejected. Duplicates are dropped, order is preserved.
func ParseReasons(raw []string) ([]types.Reason, error) {
	var (
		out      []types.Reason
		sentinel bool
		seen     = make(map[types.Reason]bool, len(raw))
	)
	for _, s := range raw {
		r, err := types.ParseReason(s)
		if err != nil {
			return nil, err
		}
		if r == types.ReasonNone {
			sentinel = true
			continue
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	if sentinel && len(out) > 0 {
		return nil, fmt.Errorf("%w: %q cannot be combined with other reasons", types.ErrInvalidInput, types.ReasonNone)
	}
	return out, nil
}
