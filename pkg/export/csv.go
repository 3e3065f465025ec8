// Package export serializes measurement results for downstream analysis.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/menta2k/microscope-measure/pkg/measure"
)

// Header is the column order of every exported CSV.
var Header = []string{"mode", "px_value", "um_value", "um_per_px", "timestamp"}

// Encode renders a single measurement as a CSV document with a header row.
func Encode(r measure.Result, ts time.Time) ([]byte, error) {
	return EncodeBatch([]measure.Result{r}, ts)
}

// EncodeBatch renders several measurements taken at the same time into one
// CSV document. The timestamp is formatted as RFC 3339.
func EncodeBatch(results []measure.Result, ts time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	stamp := ts.Format(time.RFC3339)
	for _, r := range results {
		row := []string{
			string(r.Mode),
			formatValue(r.PxValue),
			formatValue(r.UmValue),
			formatValue(r.UmPerPx),
			stamp,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// formatValue prints a float with no trailing zero padding but always at
// least one decimal, so whole numbers read as "100.0" rather than "100".
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
