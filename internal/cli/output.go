package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/liggitt/tabwriter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 10, 1, 3, ' ', tabwriter.RememberWidths)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// writeFormat prints v as json or yaml.
func writeFormat(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.Errorf("unknown output format %q (want json or yaml)", format)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func money(f float64) string { return fmt.Sprintf("%.2f", f) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// readDocuments reads API documents from YAML (or JSON). The input is a
// sequence of documents, one document, or a stream of --- separated either.
func readDocuments(r io.Reader) ([]map[string]any, error) {
	dec := yaml.NewDecoder(r)
	var out []map[string]any
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse documents")
		}
		switch t := untime(v).(type) {
		case nil:
		case []any:
			for i, item := range t {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, errors.Errorf("document %d is not a mapping", len(out)+i)
				}
				out = append(out, m)
			}
		case map[string]any:
			out = append(out, t)
		default:
			return nil, errors.Errorf("document %d is not a mapping", len(out))
		}
	}
	// yaml scalars become the JSON types the API would have sent
	for i, m := range out {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		var norm map[string]any
		if err := json.Unmarshal(b, &norm); err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		out[i] = norm
	}
	return out, nil
}

// untime turns the timestamps yaml resolves from unquoted dates back into the
// strings the API stores. A bare date stays a date.
func untime(v any) any {
	switch t := v.(type) {
	case time.Time:
		if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case map[string]any:
		for k, e := range t {
			t[k] = untime(e)
		}
	case []any:
		for i, e := range t {
			t[i] = untime(e)
		}
	}
	return v
}
