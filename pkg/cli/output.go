package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned key/value text (default).
	FormatText OutputFormat = "text"
	// FormatJSON is a JSON object.
	FormatJSON OutputFormat = "json"
)

// Field is one line of command output.
type Field struct {
	Key   string
	Value interface{}
}

// Summary is an ordered set of fields.
type Summary []Field

// MarshalJSON renders the summary as an object, keeping field order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Formatter writes command output.
type Formatter interface {
	FormatTo(w io.Writer, data Summary) error
}

// TextFormatter writes one aligned "key: value" line per field.
type TextFormatter struct{}

// FormatTo writes data to w.
func (f *TextFormatter) FormatTo(w io.Writer, data Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range data {
		if _, err := fmt.Fprintf(tw, "%s:\t%v\n", field.Key, field.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// JSONFormatter writes the summary as a JSON object.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w.
func (f *JSONFormatter) FormatTo(w io.Writer, data Summary) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// NewFormatter creates a formatter for format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case FormatText, "":
		return &TextFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}
