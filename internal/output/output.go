// Package output renders query results as JSON, a terminal table or an
// Excel workbook.
package output

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/arloliu/cqltask/types"
)

// Supported formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
	FormatXLSX  = "xlsx"
)

// ErrUnknownFormat is returned by Render for unsupported formats.
var ErrUnknownFormat = errors.New("output: unknown format")

// Render writes result to w in the given format.
//
// Parameters:
//   - w: Destination writer
//   - format: One of json, table or xlsx
//   - result: The query result
//
// Returns:
//   - error: ErrUnknownFormat or a write error
func Render(w io.Writer, format string, result *types.Result) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON(w, result)
	case FormatTable:
		return Table(w, result)
	case FormatXLSX:
		return XLSX(w, result)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type jsonResult struct {
	Success     bool        `json:"success"`
	ExecutionID string      `json:"executionId,omitempty"`
	Columns     []string    `json:"columns"`
	Rows        []types.Row `json:"rows"`
	Warnings    []string    `json:"warnings"`
}

// JSON writes result as an indented JSON document.
func JSON(w io.Writer, result *types.Result) error {
	doc := jsonResult{
		Success:     result.Success,
		ExecutionID: result.ExecutionID,
		Columns:     Columns(result),
		Rows:        make([]types.Row, 0, len(result.QueryResults)),
		Warnings:    result.Warnings,
	}
	for _, row := range result.QueryResults {
		doc.Rows = append(doc.Rows, jsonRow(row))
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// jsonRow copies row, replacing non-finite floats that encoding/json rejects
// with their CQL literal spelling.
func jsonRow(row types.Row) types.Row {
	out := make(types.Row, len(row))
	for k, v := range row {
		out[k] = jsonValue(v)
	}

	return out
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case float64:
		return finiteOrString(val)
	case float32:
		return finiteOrString(float64(val))
	case []float64:
		return convertSlice(val, finiteOrString)
	case []float32:
		return convertSlice(val, func(f float32) any { return finiteOrString(float64(f)) })
	case []any:
		return convertSlice(val, jsonValue)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonValue(e)
		}
		return out
	case map[string]float64:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = finiteOrString(e)
		}
		return out
	default:
		return v
	}
}

func convertSlice[T any](in []T, fn func(T) any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = fn(e)
	}

	return out
}

func finiteOrString(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}

// Table writes result as a text table followed by a row count.
func Table(w io.Writer, result *types.Result) error {
	columns := Columns(result)

	if len(columns) > 0 {
		data := make(pterm.TableData, 0, len(result.QueryResults)+1)
		data = append(data, columns)
		for _, row := range result.QueryResults {
			line := make([]string, len(columns))
			for i, col := range columns {
				line[i] = FormatValue(row[col])
			}
			data = append(data, line)
		}

		table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, table); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "(%d %s)\n", result.RowCount(), plural(result.RowCount(), "row", "rows"))

	return err
}

// Warnings prints each server warning to w.
func Warnings(w io.Writer, warnings []string) {
	printer := pterm.Warning.WithWriter(w)
	for _, msg := range warnings {
		printer.Println(msg)
	}
}

// Columns returns result.Columns followed by any row keys missing from it,
// sorted.
func Columns(result *types.Result) []string {
	columns := slices.Clone(result.Columns)
	if columns == nil {
		columns = []string{}
	}

	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}

	var extra []string
	for _, row := range result.QueryResults {
		for k := range row {
			if _, ok := known[k]; ok {
				continue
			}
			known[k] = struct{}{}
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	return append(columns, extra...)
}

// FormatValue renders a driver value for text output.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return "0x" + hex.EncodeToString(val)
	case time.Time:
		if val.IsZero() {
			return "null"
		}
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
