package score

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/types"
)

func TestBMI_Reference(t *testing.T) {
	// 150 lb at 5'6": 150 / 66^2 * 703 = 24.2079889...
	got, err := BMI(150, 5, 6)
	if err != nil {
		t.Fatalf("BMI: %v", err)
	}
	if r := got.Round(2); !r.Equal(decimal.RequireFromString("24.21")) {
		t.Errorf("BMI rounded: got %s, want 24.21", r)
	}
	if r := got.Round(4); !r.Equal(decimal.RequireFromString("24.2080")) {
		t.Errorf("BMI 4dp: got %s, want 24.2080", r)
	}
}

func TestBMI_InchesOnly(t *testing.T) {
	// 0 ft 70 in is the same as 5 ft 10 in.
	a, err := BMI(160, 0, 70)
	if err != nil {
		t.Fatalf("BMI: %v", err)
	}
	b, err := BMI(160, 5, 10)
	if err != nil {
		t.Fatalf("BMI: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("got %s and %s, want equal", a, b)
	}
}

func TestBMI_InvalidInput(t *testing.T) {
	tests := []struct {
		name                  string
		weight, feet, inches int
	}{
		{"zero height", 150, 0, 0},
		{"negative weight", -1, 5, 6},
		{"negative feet", 150, -5, 6},
		{"negative inches", 150, 5, -6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BMI(tc.weight, tc.feet, tc.inches)
			if !errors.Is(err, types.ErrInvalidInput) {
				t.Errorf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi  string
		want string
	}{
		{"17.9", "underweight"},
		{"18.5", "normal"},
		{"24.99", "normal"},
		{"25", "overweight"},
		{"30", "obesity class I"},
		{"37.2", "obesity class II"},
		{"41", "obesity class III"},
	}
	for _, tc := range tests {
		if got := BMICategory(decimal.RequireFromString(tc.bmi)); got != tc.want {
			t.Errorf("BMICategory(%s): got %q, want %q", tc.bmi, got, tc.want)
		}
	}
}
