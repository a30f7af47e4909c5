package api

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/estimate"
	"github.com/ivfodds/ivfodds/pkg/score"
	"github.com/ivfodds/ivfodds/pkg/types"
)

// DiagnosticHint is one human-readable note about how an estimate came out.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning"
	Level string `json:"level"`
	// Title is a short label.
	Title string `json:"title"`
	// Detail is the full explanation.
	Detail string `json:"detail"`
	// Value is an optional number associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

var levelRank = map[string]int{"warning": 0, "info": 1, "ok": 2}

// term names a score component for the breakdown.
type term struct {
	key   string
	title string
	value decimal.Decimal
}

func terms(out score.Output) []term {
	return []term{
		{"intercept", "Intercept", out.Intercept},
		{"age", "Age", out.Age},
		{"bmi", "BMI", out.BMI},
		{"infertility", "Infertility reasons", out.Infertility},
		{"prior_pregnancies", "Prior pregnancies", out.Pregnancies},
		{"prior_live_births", "Prior live births", out.LiveBirths},
	}
}

// contributions lists every additive term of the score in formula order.
func contributions(out score.Output) []Contribution {
	ts := terms(out)
	res := make([]Contribution, 0, len(ts))
	for _, t := range ts {
		res = append(res, Contribution{Key: t.key, Title: t.title, Value: t.value.StringFixed(6)})
	}
	return res
}

// computeHints derives notes from a finished estimate, warnings first.
func computeHints(req estimate.Request, res *estimate.Result) []DiagnosticHint {
	var hints []DiagnosticHint

	// BMI category
	bmi := res.BMI.Round(2).InexactFloat64()
	cat := score.BMICategory(res.BMI)
	level := "warning"
	if cat == "normal" {
		level = "ok"
	}
	hints = append(hints, DiagnosticHint{
		Key:   "bmi_category",
		Level: level,
		Title: fmt.Sprintf("BMI %.2f (%s)", bmi, cat),
		Detail: fmt.Sprintf(
			"Weight %d lb at %d ft %d in gives a BMI of %.2f, in the %s range. "+
				"BMI enters the formula through a linear and a power term.",
			req.Weight, req.HeightFeet, req.HeightInches, bmi, cat,
		),
		Value: &bmi,
	})

	// Largest terms, intercept excluded
	var lowest, highest *term
	ts := terms(res.Components)
	for i := 1; i < len(ts); i++ {
		t := &ts[i]
		if t.value.IsNegative() && (lowest == nil || t.value.LessThan(lowest.value)) {
			lowest = t
		}
		if t.value.IsPositive() && (highest == nil || t.value.GreaterThan(highest.value)) {
			highest = t
		}
	}
	if lowest != nil {
		v := lowest.value.InexactFloat64()
		hints = append(hints, DiagnosticHint{
			Key:    "largest_decrease",
			Level:  "info",
			Title:  lowest.title + " lowers the score most",
			Detail: fmt.Sprintf("The %s term contributes %s to the score, the largest reduction of any input.", lowest.key, lowest.value.StringFixed(4)),
			Value:  &v,
		})
	}
	if highest != nil {
		v := highest.value.InexactFloat64()
		hints = append(hints, DiagnosticHint{
			Key:    "largest_increase",
			Level:  "info",
			Title:  highest.title + " raises the score most",
			Detail: fmt.Sprintf("The %s term contributes +%s to the score, the largest increase of any input.", highest.key, highest.value.StringFixed(4)),
			Value:  &v,
		})
	}

	// Formula selection notes
	if !res.Criteria.ReasonKnown {
		hints = append(hints, DiagnosticHint{
			Key:   "reason_unknown",
			Level: "info",
			Title: "Reason not known",
			Detail: "No infertility reason was selected, so the formula for an unknown " +
				"cause was used and the infertility term is zero.",
		})
	}
	if res.Criteria.EggSource == types.EggSourceDonor && req.IVFCycles > 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "donor_ivf_ignored",
			Level: "info",
			Title: "IVF history not used",
			Detail: fmt.Sprintf(
				"%d previous IVF cycles were entered, but donor-egg formulas do not "+
					"distinguish by IVF history.", req.IVFCycles),
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
