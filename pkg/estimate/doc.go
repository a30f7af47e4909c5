// Package estimate turns a raw calculator request into a success rate.
//
// Estimator holds the coefficient table it was built with and never mutates
// it, so one Estimator can serve any number of goroutines. Estimate
// validates the request, derives BMI and the selection criteria, picks the
// formula row and scores it.
package estimate
