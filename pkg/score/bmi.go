package score

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/types"
)

// divisionPlaces is the scale used for every decimal division.
const divisionPlaces = 28

var (
	inchesPerFoot = decimal.NewFromInt(12)
	bmiFactor     = decimal.NewFromInt(703)
)

// BMI returns weight / height_inches^2 * 703 for weight in pounds and height
// in feet plus inches. A zero total height is an input error.
func BMI(weightLbs, heightFeet, heightInches int) (decimal.Decimal, error) {
	if weightLbs < 0 || heightFeet < 0 || heightInches < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: weight and height must not be negative (weight=%d feet=%d inches=%d)",
			types.ErrInvalidInput, weightLbs, heightFeet, heightInches)
	}
	total := decimal.NewFromInt(int64(heightFeet)).Mul(inchesPerFoot).Add(decimal.NewFromInt(int64(heightInches)))
	if total.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: height must be greater than zero", types.ErrInvalidInput)
	}
	return decimal.NewFromInt(int64(weightLbs)).
		DivRound(total.Mul(total), divisionPlaces).
		Mul(bmiFactor), nil
}

// BMI category boundaries (WHO adult classification).
var (
	bmiUnderweight = decimal.RequireFromString("18.5")
	bmiNormal      = decimal.NewFromInt(25)
	bmiOverweight  = decimal.NewFromInt(30)
	bmiObese1      = decimal.NewFromInt(35)
	bmiObese2      = decimal.NewFromInt(40)
)

// BMICategory labels a BMI value.
func BMICategory(bmi decimal.Decimal) string {
	switch {
	case bmi.LessThan(bmiUnderweight):
		return "underweight"
	case bmi.LessThan(bmiNormal):
		return "normal"
	case bmi.LessThan(bmiOverweight):
		return "overweight"
	case bmi.LessThan(bmiObese1):
		return "obesity class I"
	case bmi.LessThan(bmiObese2):
		return "obesity class II"
	default:
		return "obesity class III"
	}
}
