package formula

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ivfodds/ivfodds/pkg/types"
)

// Load reads and parses the CSV table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", types.ErrLoad, path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadFS reads and parses the table stored as name in fsys.
func LoadFS(fsys fs.FS, name string) (*Table, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", types.ErrLoad, name, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Parse decodes a coefficient table from r. All failures wrap types.ErrLoad.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty table", types.ErrLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", types.ErrLoad, err)
	}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.TrimSpace(h)
	}

	layout, err := newLayout(header)
	if err != nil {
		return nil, err
	}

	t := &Table{header: header}
	seen := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrLoad, err)
		}

		row, err := layout.row(len(t.rows)+1, rec)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[row.key()]; dup {
			return nil, fmt.Errorf("%w: %w: rows %d and %d share selection keys %s",
				types.ErrLoad, types.ErrAmbiguous, prev, row.Index, row.key())
		}
		seen[row.key()] = row.Index
		t.rows = append(t.rows, row)
	}

	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: table has a header but no rows", types.ErrLoad)
	}
	return t, nil
}

// layout maps column names to their positions in the header.
type layout struct {
	header      []string
	index       map[string]int
	pregnancies map[string]int // bucket -> column index
	liveBirths  map[string]int
}

var numericColumns = []string{
	ColIntercept,
	ColAgeLinear, ColAgePowerCoef, ColAgePowerFactor,
	ColBMILinear, ColBMIPowerCoef, ColBMIPowerFactor,
}

func newLayout(header []string) (*layout, error) {
	l := &layout{
		header:      header,
		index:       make(map[string]int, len(header)),
		pregnancies: make(map[string]int),
		liveBirths:  make(map[string]int),
	}
	for i, h := range header {
		if _, dup := l.index[h]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", types.ErrLoad, h)
		}
		l.index[h] = i
		if b, ok := bucket(h, prefixPregnancies); ok {
			l.pregnancies[b] = i
		}
		if b, ok := bucket(h, prefixLiveBirths); ok {
			l.liveBirths[b] = i
		}
	}

	required := []string{ColUsingOwnEggs, ColAttemptedIVF, ColReasonKnown}
	required = append(required, numericColumns...)
	for _, r := range types.Reasons {
		required = append(required, ReasonColumn(r))
	}
	var missing []string
	for _, col := range required {
		if _, ok := l.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(l.pregnancies) == 0 {
		missing = append(missing, prefixPregnancies+"<bucket>"+suffixValue)
	}
	if len(l.liveBirths) == 0 {
		missing = append(missing, prefixLiveBirths+"<bucket>"+suffixValue)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing columns: %s", types.ErrLoad, strings.Join(missing, ", "))
	}
	return l, nil
}

// bucket extracts <b> from prefix + <b> + "_value".
func bucket(col, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(col, prefix)
	if !ok {
		return "", false
	}
	b, ok := strings.CutSuffix(rest, suffixValue)
	if !ok || b == "" {
		return "", false
	}
	return b, true
}

func (l *layout) row(n int, rec []string) (*Row, error) {
	row := &Row{
		Index:            n,
		ReasonValues:     make(map[types.Reason]decimal.Decimal, len(types.Reasons)),
		PriorPregnancies: make(map[string]decimal.Decimal, len(l.pregnancies)),
		PriorLiveBirths:  make(map[string]decimal.Decimal, len(l.liveBirths)),
		cells:            make([]Cell, len(rec)),
	}
	for i, raw := range rec {
		raw = strings.TrimSpace(raw)
		c := Cell{Column: l.header[i], Raw: raw}
		if d, err := decimal.NewFromString(raw); err == nil {
			c.Value = d
			c.Numeric = true
		}
		row.cells[i] = c
	}

	row.UsingOwnEggs = row.cells[l.index[ColUsingOwnEggs]].Raw
	row.AttemptedIVF = row.cells[l.index[ColAttemptedIVF]].Raw
	row.ReasonKnown = row.cells[l.index[ColReasonKnown]].Raw
	if i, ok := l.index[ColLabel]; ok {
		row.Label = row.cells[i].Raw
	}
	if err := checkFlag(n, ColUsingOwnEggs, row.UsingOwnEggs, false); err != nil {
		return nil, err
	}
	if err := checkFlag(n, ColAttemptedIVF, row.AttemptedIVF, true); err != nil {
		return nil, err
	}
	if err := checkFlag(n, ColReasonKnown, row.ReasonKnown, false); err != nil {
		return nil, err
	}

	num := func(col string) (decimal.Decimal, error) {
		c := row.cells[l.index[col]]
		if !c.Numeric {
			return decimal.Decimal{}, fmt.Errorf("%w: row %d: column %s: %q is not a number",
				types.ErrLoad, n, col, c.Raw)
		}
		return c.Value, nil
	}

	targets := []*decimal.Decimal{
		&row.Intercept,
		&row.AgeLinear, &row.AgePowerCoef, &row.AgePowerFactor,
		&row.BMILinear, &row.BMIPowerCoef, &row.BMIPowerFactor,
	}
	for i, col := range numericColumns {
		v, err := num(col)
		if err != nil {
			return nil, err
		}
		*targets[i] = v
	}
	for _, r := range types.Reasons {
		v, err := num(ReasonColumn(r))
		if err != nil {
			return nil, err
		}
		row.ReasonValues[r] = v
	}
	for b := range l.pregnancies {
		v, err := num(prefixPregnancies + b + suffixValue)
		if err != nil {
			return nil, err
		}
		row.PriorPregnancies[b] = v
	}
	for b := range l.liveBirths {
		v, err := num(prefixLiveBirths + b + suffixValue)
		if err != nil {
			return nil, err
		}
		row.PriorLiveBirths[b] = v
	}
	return row, nil
}

func checkFlag(n int, col, raw string, allowNA bool) error {
	switch strings.ToUpper(raw) {
	case FlagTrue, FlagFalse:
		return nil
	case FlagNA:
		if allowNA {
			return nil
		}
	}
	return fmt.Errorf("%w: row %d: column %s: unexpected value %q", types.ErrLoad, n, col, raw)
}
