package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
	// FormatJUnit names JUnit XML output. NewFormatter has no JUnit
	// formatter and returns a TextFormatter for it.
	FormatJUnit OutputFormat = "junit"
)

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats output as CSV. It accepts anything that JSON-encodes
// to a single object (one data row) or an array of objects (one row each);
// scalar data has no tabular shape and is rejected.
type CSVFormatter struct {
	// Headers fixes the column order. When empty, columns are the union of
	// all row keys in sorted order.
	Headers []string
}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	if data == nil {
		return fmt.Errorf("csv formatter: no data")
	}
	rows, err := csvRows(data)
	if err != nil {
		return err
	}

	headers := f.Headers
	if len(headers) == 0 {
		headers = csvHeaders(rows)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// csvRows normalizes arbitrary data into a slice of string-keyed rows by
// round-tripping it through JSON: a single object becomes one row, an array
// of objects becomes one row per element.
func csvRows(data interface{}) ([]map[string]string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("csv formatter: %w", err)
	}

	var asSlice []map[string]interface{}
	if err := json.Unmarshal(raw, &asSlice); err == nil {
		rows := make([]map[string]string, len(asSlice))
		for i, m := range asSlice {
			rows[i] = csvStringify(m)
		}
		return rows, nil
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return []map[string]string{csvStringify(asMap)}, nil
	}

	return nil, fmt.Errorf("csv formatter: data must encode to an object or an array of objects")
}

func csvStringify(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func csvHeaders(rows []map[string]string) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
