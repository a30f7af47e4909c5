package formula

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ivfodds/ivfodds/pkg/types"
)

// Table is the immutable set of coefficient rows.
type Table struct {
	header []string
	rows   []*Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Header returns the column names in source order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Rows returns the rows in source order. The rows themselves must not be modified.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Select returns the single row matching c.
//
// Donor-egg criteria match rows with own-eggs FALSE and prior-IVF N/A; the
// AttemptedIVF flag is ignored. Own-egg criteria match rows with own-eggs TRUE
// and prior-IVF equal to the flag. Both require the reason-known key to match.
func (t *Table) Select(c Criteria) (*Row, error) {
	switch c.EggSource {
	case types.EggSourceOwn, types.EggSourceDonor:
	default:
		return nil, fmt.Errorf("%w: egg source %q", types.ErrInvalidInput, c.EggSource)
	}

	var found []*Row
	for _, r := range t.rows {
		if r.matches(c) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: egg_source=%s attempted_ivf=%s reason_known=%s",
			types.ErrNoMatch, c.EggSource, criteriaIVF(c), Flag(c.ReasonKnown))
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d rows match egg_source=%s attempted_ivf=%s reason_known=%s",
			types.ErrAmbiguous, len(found), c.EggSource, criteriaIVF(c), Flag(c.ReasonKnown))
	}
}

func criteriaIVF(c Criteria) string {
	if c.EggSource == types.EggSourceDonor {
		return FlagNA
	}
	return Flag(c.AttemptedIVF)
}

// WriteCSV re-serialises the table with every cell exactly as it was read
// (after whitespace trimming).
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	rec := make([]string, len(t.header))
	for _, r := range t.rows {
		for i, c := range r.cells {
			rec[i] = c.Raw
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
