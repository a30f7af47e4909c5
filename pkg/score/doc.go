// Package score evaluates the IVF success formula for one patient.
//
// bmi.go derives BMI from imperial weight and height in decimal arithmetic.
//
// score.go provides the pure Compute(Input, *formula.Row) function:
//
//	score = intercept
//	      + age_lin*age + age_pow*age^age_exp
//	      + bmi_lin*bmi + bmi_pow*bmi^bmi_exp
//	      + sum(reason values for selected reasons)
//	      + prior_pregnancies[bucket] + prior_live_births[bucket]
//	success = 100 * exp(score) / (1 + exp(score))
//
// Everything up to the score is decimal. exp runs on float64; that is the
// only place precision is lost.
package score
