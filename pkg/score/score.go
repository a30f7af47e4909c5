package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/pkg/types"
)

// powPrecision is the number of significant digits kept by fractional powers.
const powPrecision = 28

// RatePlaces is the number of decimal places the success rate is rounded to.
const RatePlaces = 2

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Input holds the patient values fed into the formula.
type Input struct {
	// Age in whole years.
	Age int

	// BMI as returned by BMI, unrounded.
	BMI decimal.Decimal

	// Reasons is the set of selected infertility categories. Duplicates
	// are counted once. ReasonNone is not allowed here.
	Reasons []types.Reason

	// PriorPregnancies and PriorLiveBirths are bucket labels such as "0",
	// "1" or "2+". Surrounding whitespace is ignored.
	PriorPregnancies string
	PriorLiveBirths  string
}

// Output is the result of the formula.
type Output struct {
	// Score is the linear predictor before the logistic transform.
	Score decimal.Decimal

	// SuccessRate is 100*exp(Score)/(1+exp(Score)) rounded to RatePlaces.
	SuccessRate decimal.Decimal

	// Per-feature contributions that sum (with Intercept) to Score.
	Intercept   decimal.Decimal
	Age         decimal.Decimal
	BMI         decimal.Decimal
	Infertility decimal.Decimal
	Pregnancies decimal.Decimal
	LiveBirths  decimal.Decimal
}

// Compute evaluates row for in. It returns types.ErrInvalidInput when a
// bucket label has no column, a reason is unknown, or a power is undefined.
func Compute(in Input, row *formula.Row) (Output, error) {
	if in.Age < 0 {
		return Output{}, fmt.Errorf("%w: age %d must not be negative", types.ErrInvalidInput, in.Age)
	}
	age := decimal.NewFromInt(int64(in.Age))

	agePow, err := power(age, row.AgePowerFactor)
	if err != nil {
		return Output{}, fmt.Errorf("age term: %w", err)
	}
	bmiPow, err := power(in.BMI, row.BMIPowerFactor)
	if err != nil {
		return Output{}, fmt.Errorf("bmi term: %w", err)
	}

	out := Output{
		Intercept: row.Intercept,
		Age:       row.AgeLinear.Mul(age).Add(row.AgePowerCoef.Mul(agePow)),
		BMI:       row.BMILinear.Mul(in.BMI).Add(row.BMIPowerCoef.Mul(bmiPow)),
	}

	out.Infertility, err = infertility(in.Reasons, row)
	if err != nil {
		return Output{}, err
	}
	out.Pregnancies, err = bucketValue("prior pregnancies", in.PriorPregnancies, row.PriorPregnancies)
	if err != nil {
		return Output{}, err
	}
	out.LiveBirths, err = bucketValue("prior live births", in.PriorLiveBirths, row.PriorLiveBirths)
	if err != nil {
		return Output{}, err
	}

	out.Score = out.Intercept.
		Add(out.Age).
		Add(out.BMI).
		Add(out.Infertility).
		Add(out.Pregnancies).
		Add(out.LiveBirths)
	out.SuccessRate = SuccessRate(out.Score)
	return out, nil
}

// Probability returns exp(score)/(1+exp(score)), unrounded.
//
// exp is evaluated in float64; the ratio is taken back in decimal. When exp
// overflows the result is exactly 1, when it underflows exactly 0.
func Probability(score decimal.Decimal) decimal.Decimal {
	e := math.Exp(score.InexactFloat64())
	switch {
	case math.IsInf(e, 1):
		return one
	case e == 0:
		return decimal.Zero
	}
	ed := decimal.NewFromFloat(e)
	return ed.DivRound(one.Add(ed), divisionPlaces)
}

// SuccessRate converts a score into a percentage rounded to RatePlaces,
// half to even. The value is never clipped.
func SuccessRate(score decimal.Decimal) decimal.Decimal {
	return roundRate(Probability(score).Mul(hundred))
}

func roundRate(pct decimal.Decimal) decimal.Decimal {
	return pct.RoundBank(RatePlaces)
}

// power returns base^exp with the undefined cases reported as input errors.
func power(base, exp decimal.Decimal) (decimal.Decimal, error) {
	if base.IsZero() {
		switch {
		case exp.IsPositive():
			return decimal.Zero, nil
		case exp.IsZero():
			return decimal.Decimal{}, fmt.Errorf("%w: 0^0 is undefined", types.ErrInvalidInput)
		default:
			return decimal.Decimal{}, fmt.Errorf("%w: 0^%s is undefined", types.ErrInvalidInput, exp)
		}
	}
	v, err := base.PowWithPrecision(exp, powPrecision)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s^%s: %w", types.ErrInvalidInput, base, exp, err)
	}
	return v, nil
}

func infertility(reasons []types.Reason, row *formula.Row) (decimal.Decimal, error) {
	sum := decimal.Zero
	seen := make(map[types.Reason]bool, len(reasons))
	for _, r := range reasons {
		if seen[r] {
			continue
		}
		seen[r] = true
		v, ok := row.ReasonValues[r]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: infertility reason %q has no coefficient", types.ErrInvalidInput, r)
		}
		sum = sum.Add(v)
	}
	return sum, nil
}

func bucketValue(name, label string, values map[string]decimal.Decimal) (decimal.Decimal, error) {
	label = strings.TrimSpace(label)
	v, ok := values[label]
	if !ok {
		known := make([]string, 0, len(values))
		for k := range values {
			known = append(known, k)
		}
		sort.Strings(known)
		return decimal.Decimal{}, fmt.Errorf("%w: %s bucket %q: want one of %s",
			types.ErrInvalidInput, name, label, strings.Join(known, ", "))
	}
	return v, nil
}
