// Package data embeds the default IVF success coefficient table.
package data

import "embed"

// FormulasFile is the name of the default table inside FS.
const FormulasFile = "ivf_success_formulas.csv"

// FS contains the embedded reference dataset.
//
//go:embed ivf_success_formulas.csv
var FS embed.FS
