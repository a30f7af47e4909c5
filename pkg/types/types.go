package types

import (
	"fmt"
	"strings"
)

// EggSource is where the eggs used in the cycle come from.
type EggSource string

const (
	EggSourceOwn   EggSource = "own_eggs"
	EggSourceDonor EggSource = "donor_eggs"
)

// ParseEggSource accepts "own_eggs"/"own" and "donor_eggs"/"donor",
// case-insensitively.
func ParseEggSource(s string) (EggSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "own_eggs", "own":
		return EggSourceOwn, nil
	case "donor_eggs", "donor":
		return EggSourceDonor, nil
	default:
		return "", fmt.Errorf("%w: egg source %q: want own_eggs|donor_eggs", ErrInvalidInput, s)
	}
}

// Reason is one of the eight infertility-cause categories.
type Reason string

const (
	ReasonTubalFactor              Reason = "tubal_factor"
	ReasonMaleFactor               Reason = "male_factor_infertility"
	ReasonEndometriosis            Reason = "endometriosis"
	ReasonOvulatoryDisorder        Reason = "ovulatory_disorder"
	ReasonDiminishedOvarianReserve Reason = "diminished_ovarian_reserve"
	ReasonUterineFactor            Reason = "uterine_factor"
	ReasonOther                    Reason = "other"
	ReasonUnexplained              Reason = "unexplained_infertility"

	// ReasonNone is the "I don't know / no reason" sentinel. It is not a
	// category and carries no coefficient.
	ReasonNone Reason = "no_reason"
)

// Reasons lists the eight categories in table column order.
var Reasons = []Reason{
	ReasonTubalFactor,
	ReasonMaleFactor,
	ReasonEndometriosis,
	ReasonOvulatoryDisorder,
	ReasonDiminishedOvarianReserve,
	ReasonUterineFactor,
	ReasonOther,
	ReasonUnexplained,
}

// ParseReason maps s to a Reason. The sentinel ReasonNone is accepted.
func ParseReason(s string) (Reason, error) {
	r := Reason(strings.ToLower(strings.TrimSpace(s)))
	if r == ReasonNone {
		return r, nil
	}
	for _, known := range Reasons {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown infertility reason %q", ErrInvalidInput, s)
}
