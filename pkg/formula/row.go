package formula

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/types"
)

// Column names in the reference CSV.
const (
	ColUsingOwnEggs = "param_using_own_eggs"
	ColAttemptedIVF = "param_attempted_ivf_previously"
	ColReasonKnown  = "param_is_reason_for_infertility_known"
	ColLabel        = "cdc_formula"

	ColIntercept      = "formula_intercept"
	ColAgeLinear      = "formula_age_linear_coefficient"
	ColAgePowerCoef   = "formula_age_power_coefficient"
	ColAgePowerFactor = "formula_age_power_factor"
	ColBMILinear      = "formula_bmi_linear_coefficient"
	ColBMIPowerCoef   = "formula_bmi_power_coefficient"
	ColBMIPowerFactor = "formula_bmi_power_factor"

	prefixPregnancies = "formula_prior_pregnancies_"
	prefixLiveBirths  = "formula_prior_live_births_"
	suffixValue       = "_value"
)

// Selection key values.
const (
	FlagTrue  = "TRUE"
	FlagFalse = "FALSE"

	// FlagNA marks the prior-IVF key as inapplicable (donor-egg rows).
	FlagNA = "N/A"
)

// ReasonColumn returns the column holding the additive term for r.
func ReasonColumn(r types.Reason) string {
	return "formula_" + string(r) + "_true_value"
}

// Flag renders b as a selection key value.
func Flag(b bool) string {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// Criteria are the three categorical inputs that pick a row.
type Criteria struct {
	EggSource    types.EggSource
	AttemptedIVF bool // ignored for donor eggs
	ReasonKnown  bool
}

// Row is one coefficient record.
type Row struct {
	// Index is the 1-based data row number in the source file.
	Index int

	// Selection keys exactly as they appear in the source.
	UsingOwnEggs string
	AttemptedIVF string
	ReasonKnown  string

	// Label is the optional cdc_formula column, raw.
	Label string

	Intercept      decimal.Decimal
	AgeLinear      decimal.Decimal
	AgePowerCoef   decimal.Decimal
	AgePowerFactor decimal.Decimal
	BMILinear      decimal.Decimal
	BMIPowerCoef   decimal.Decimal
	BMIPowerFactor decimal.Decimal

	// ReasonValues holds one additive term per infertility category.
	ReasonValues map[types.Reason]decimal.Decimal

	// PriorPregnancies and PriorLiveBirths are keyed by bucket label ("0", "1", "2+").
	PriorPregnancies map[string]decimal.Decimal
	PriorLiveBirths  map[string]decimal.Decimal

	cells []Cell
}

// Cell is one source field: its raw text and, when numeric, its decimal value.
type Cell struct {
	Column  string
	Raw     string
	Value   decimal.Decimal
	Numeric bool
}

// Cells returns every field of the row in header order.
func (r *Row) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Cell returns the field named col.
func (r *Row) Cell(col string) (Cell, bool) {
	for _, c := range r.cells {
		if c.Column == col {
			return c, true
		}
	}
	return Cell{}, false
}

// matches reports whether the row's selection keys satisfy c.
func (r *Row) matches(c Criteria) bool {
	if !flagEqual(r.ReasonKnown, Flag(c.ReasonKnown)) {
		return false
	}
	switch c.EggSource {
	case types.EggSourceDonor:
		return flagEqual(r.UsingOwnEggs, FlagFalse) && flagEqual(r.AttemptedIVF, FlagNA)
	case types.EggSourceOwn:
		return flagEqual(r.UsingOwnEggs, FlagTrue) && flagEqual(r.AttemptedIVF, Flag(c.AttemptedIVF))
	default:
		return false
	}
}

func (r *Row) key() string {
	return strings.ToUpper(r.UsingOwnEggs) + "|" + strings.ToUpper(r.AttemptedIVF) + "|" + strings.ToUpper(r.ReasonKnown)
}

func flagEqual(raw, want string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), want)
}
