// Package formula loads the IVF success coefficient table and selects the
// row that applies to a patient.
//
// The table is a CSV file with one header row. Selection keys
// (param_using_own_eggs, param_attempted_ivf_previously,
// param_is_reason_for_infertility_known) are categorical strings; every other
// cell that parses as a number is held as a decimal.Decimal. Reason and
// prior-history bucket columns (formula_<reason>_true_value,
// formula_prior_pregnancies_<bucket>_value,
// formula_prior_live_births_<bucket>_value) are resolved into maps at load
// time so scoring never looks a column up by name.
//
// A Table is immutable once Parse returns and is safe for concurrent readers.
package formula
