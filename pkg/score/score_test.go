package score

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/pkg/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// simpleRow returns a row whose terms are easy to add up by hand.
func simpleRow() *formula.Row {
	return &formula.Row{
		Intercept:      d("-1"),
		AgeLinear:      d("0.1"),
		AgePowerCoef:   d("0"),
		AgePowerFactor: d("2"),
		BMILinear:      d("0"),
		BMIPowerCoef:   d("0"),
		BMIPowerFactor: d("1"),
		ReasonValues: map[types.Reason]decimal.Decimal{
			types.ReasonTubalFactor:              d("0.5"),
			types.ReasonMaleFactor:               d("0.2"),
			types.ReasonEndometriosis:            d("0"),
			types.ReasonOvulatoryDisorder:        d("0"),
			types.ReasonDiminishedOvarianReserve: d("-0.4"),
			types.ReasonUterineFactor:            d("0"),
			types.ReasonOther:                    d("0"),
			types.ReasonUnexplained:              d("0"),
		},
		PriorPregnancies: map[string]decimal.Decimal{"0": d("0"), "1": d("0.25"), "2+": d("0.1")},
		PriorLiveBirths:  map[string]decimal.Decimal{"0": d("0"), "1": d("0.3"), "2+": d("0.2")},
	}
}

func TestCompute_HandWorked(t *testing.T) {
	// score = -1 + 0.1*10 + 0.5 (tubal) + 0.25 (1 pregnancy) + 0 = 0.75
	// success = 100 / (1 + e^-0.75) = 67.9178...
	out, err := Compute(Input{
		Age:              10,
		BMI:              d("24"),
		Reasons:          []types.Reason{types.ReasonTubalFactor},
		PriorPregnancies: "1",
		PriorLiveBirths:  "0",
	}, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !out.Score.Equal(d("0.75")) {
		t.Errorf("Score: got %s, want 0.75", out.Score)
	}
	if !out.SuccessRate.Equal(d("67.92")) {
		t.Errorf("SuccessRate: got %s, want 67.92", out.SuccessRate)
	}
	if !out.Age.Equal(d("1")) {
		t.Errorf("Age component: got %s, want 1", out.Age)
	}
	if !out.Infertility.Equal(d("0.5")) {
		t.Errorf("Infertility component: got %s, want 0.5", out.Infertility)
	}
	if !out.Pregnancies.Equal(d("0.25")) {
		t.Errorf("Pregnancies component: got %s, want 0.25", out.Pregnancies)
	}
}

func TestCompute_ComponentsSumToScore(t *testing.T) {
	row := simpleRow()
	row.AgePowerCoef = d("-0.0003")
	row.AgePowerFactor = d("2.763")
	row.BMILinear = d("0.06")
	row.BMIPowerCoef = d("-0.00121")
	row.BMIPowerFactor = d("2")

	out, err := Compute(Input{
		Age:              34,
		BMI:              d("23.4"),
		Reasons:          []types.Reason{types.ReasonMaleFactor, types.ReasonDiminishedOvarianReserve},
		PriorPregnancies: "2+",
		PriorLiveBirths:  "1",
	}, row)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sum := out.Intercept.Add(out.Age).Add(out.BMI).Add(out.Infertility).Add(out.Pregnancies).Add(out.LiveBirths)
	if !sum.Equal(out.Score) {
		t.Errorf("components sum to %s, Score is %s", sum, out.Score)
	}
	if !out.Infertility.Equal(d("-0.2")) {
		t.Errorf("Infertility: got %s, want -0.2", out.Infertility)
	}
}

func TestCompute_NoReasonsIsExactlyZero(t *testing.T) {
	out, err := Compute(Input{Age: 30, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0"}, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !out.Infertility.IsZero() {
		t.Errorf("Infertility: got %s, want 0", out.Infertility)
	}
}

func TestCompute_DuplicateReasonsCountedOnce(t *testing.T) {
	in := Input{Age: 30, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0",
		Reasons: []types.Reason{types.ReasonTubalFactor, types.ReasonTubalFactor}}
	out, err := Compute(in, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !out.Infertility.Equal(d("0.5")) {
		t.Errorf("Infertility: got %s, want 0.5", out.Infertility)
	}
}

func TestCompute_PowerTerms(t *testing.T) {
	row := simpleRow()
	row.AgeLinear = d("0")
	row.AgePowerCoef = d("1")
	row.AgePowerFactor = d("0.5")
	row.BMIPowerCoef = d("0.01")
	row.BMIPowerFactor = d("2")

	out, err := Compute(Input{Age: 16, BMI: d("20"), PriorPregnancies: "0", PriorLiveBirths: "0"}, row)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// 16^0.5 = 4
	if diff := out.Age.Sub(d("4")).Abs(); diff.GreaterThan(d("1e-20")) {
		t.Errorf("Age component: got %s, want 4", out.Age)
	}
	// 0.01 * 20^2 = 4
	if !out.BMI.Equal(d("4")) {
		t.Errorf("BMI component: got %s, want 4", out.BMI)
	}
}

func TestCompute_ZeroAgePower(t *testing.T) {
	out, err := Compute(Input{Age: 0, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0"}, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !out.Age.IsZero() {
		t.Errorf("Age component: got %s, want 0", out.Age)
	}

	row := simpleRow()
	row.AgePowerFactor = d("0")
	if _, err := Compute(Input{Age: 0, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0"}, row); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("0^0: want ErrInvalidInput, got %v", err)
	}
}

func TestCompute_BucketLabelTrimmed(t *testing.T) {
	out, err := Compute(Input{Age: 30, BMI: d("22"), PriorPregnancies: " 2+ ", PriorLiveBirths: "1\t"}, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !out.Pregnancies.Equal(d("0.1")) || !out.LiveBirths.Equal(d("0.3")) {
		t.Errorf("buckets: got %s / %s, want 0.1 / 0.3", out.Pregnancies, out.LiveBirths)
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"unknown pregnancy bucket", Input{Age: 30, BMI: d("22"), PriorPregnancies: "3", PriorLiveBirths: "0"}},
		{"unknown birth bucket", Input{Age: 30, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "many"}},
		{"empty bucket", Input{Age: 30, BMI: d("22"), PriorPregnancies: "", PriorLiveBirths: "0"}},
		{"negative age", Input{Age: -1, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0"}},
		{"sentinel reason", Input{Age: 30, BMI: d("22"), PriorPregnancies: "0", PriorLiveBirths: "0",
			Reasons: []types.Reason{types.ReasonNone}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.in, simpleRow())
			if !errors.Is(err, types.ErrInvalidInput) {
				t.Errorf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{
		Age:              37,
		BMI:              d("27.123456789"),
		Reasons:          []types.Reason{types.ReasonMaleFactor},
		PriorPregnancies: "1",
		PriorLiveBirths:  "1",
	}
	first, err := Compute(in, simpleRow())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Compute(in, simpleRow())
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if !again.Score.Equal(first.Score) || !again.SuccessRate.Equal(first.SuccessRate) {
			t.Fatalf("run %d: got %s/%s, want %s/%s", i, again.Score, again.SuccessRate, first.Score, first.SuccessRate)
		}
	}
}

// --- logistic transform (float64 exp is the precision seam) ---

func TestSuccessRate_Midpoint(t *testing.T) {
	if got := SuccessRate(decimal.Zero); !got.Equal(d("50")) {
		t.Errorf("SuccessRate(0): got %s, want 50", got)
	}
}

func TestProbability_StrictlyInsideUnitInterval(t *testing.T) {
	prev := decimal.Zero
	for s := -30; s <= 30; s++ {
		p := Probability(decimal.NewFromInt(int64(s)))
		if !p.IsPositive() || !p.LessThan(one) {
			t.Errorf("Probability(%d) = %s, want strictly inside (0, 1)", s, p)
		}
		if s > -30 && !p.GreaterThan(prev) {
			t.Errorf("Probability(%d) = %s not above Probability(%d) = %s", s, p, s-1, prev)
		}
		prev = p
	}
}

func TestProbability_Limits(t *testing.T) {
	if got := Probability(d("-1000")); !got.IsZero() {
		t.Errorf("Probability(-1000): got %s, want 0", got)
	}
	if got := Probability(d("1000")); !got.Equal(one) {
		t.Errorf("Probability(1000): got %s, want 1", got)
	}
	if got := SuccessRate(d("-50")); !got.IsZero() {
		t.Errorf("SuccessRate(-50): got %s, want 0.00", got)
	}
	if got := SuccessRate(d("50")); !got.Equal(hundred) {
		t.Errorf("SuccessRate(50): got %s, want 100.00", got)
	}
}

func TestSuccessRate_Symmetry(t *testing.T) {
	for _, s := range []string{"0.3", "1.25", "2.5", "4"} {
		pos := SuccessRate(d(s))
		neg := SuccessRate(d(s).Neg())
		if sum := pos.Add(neg); !sum.Equal(hundred) {
			t.Errorf("SuccessRate(%s) + SuccessRate(-%s) = %s, want 100", s, s, sum)
		}
	}
}

func TestRoundRate_HalfToEven(t *testing.T) {
	tests := []struct{ in, want string }{
		{"12.345", "12.34"},
		{"12.355", "12.36"},
		{"12.3451", "12.35"},
		{"99.995", "100"},
		{"0.005", "0"},
		{"0.015", "0.02"},
	}
	for _, tt := range tests {
		if got := roundRate(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("roundRate(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
