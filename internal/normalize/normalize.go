// Package normalize converts loosely-typed source rows into domain.Record.
//
// Two input shapes are supported: REST list responses, where each record's
// fields arrive as decoded JSON, and cell readers that return one value per
// field name and may fail for fields the source table does not have. Both go
// through the same per-field coercion table so every caller sees identical
// canonical records.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/festsched/internal/domain"
)

// CellReader returns the raw value stored under a field name. A nil value
// with a nil error means the field is empty. An error means the field could
// not be read and is treated as empty.
type CellReader interface {
	CellValue(field string) (any, error)
}

// CellReaderFunc adapts a function to CellReader.
type CellReaderFunc func(field string) (any, error)

// CellValue implements CellReader.
func (f CellReaderFunc) CellValue(field string) (any, error) { return f(field) }

// RESTRecord is one element of a REST list response.
type RESTRecord struct {
	ID          string         `json:"id"`
	CreatedTime any            `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// CellValue implements CellReader. Missing fields are empty, never errors.
func (r RESTRecord) CellValue(field string) (any, error) {
	return r.Fields[field], nil
}

type fieldRule struct {
	name  string
	apply func(f *domain.Fields, v any)
}

// rules lists every canonical field with the coercion applied to it.
var rules = []fieldRule{
	{"Date", func(f *domain.Fields, v any) { f.Date = text(v) }},
	{"Category", func(f *domain.Fields, v any) { f.Category = selectName(v) }},
	{"Activity", func(f *domain.Fields, v any) { f.Activity = text(v) }},
	{"Location", func(f *domain.Fields, v any) { f.Location = selectName(v) }},
	{"Timings", func(f *domain.Fields, v any) { f.Timings = text(v) }},
	{"From", func(f *domain.Fields, v any) { f.From = text(v) }},
	{"To", func(f *domain.Fields, v any) { f.To = text(v) }},
	{"Service", func(f *domain.Fields, v any) { f.Service = text(v) }},
	{"Start Time", func(f *domain.Fields, v any) { f.StartTime = text(v) }},
	{"Coordinator", func(f *domain.Fields, v any) { f.Coordinator = linkedIDs(v) }},
	{"Team Members", func(f *domain.Fields, v any) { f.TeamMembers = linkedIDs(v) }},
	{"Standby", func(f *domain.Fields, v any) { f.Standby = linkedIDs(v) }},
	{"Name", func(f *domain.Fields, v any) { f.Name = text(v) }},
	{"Type", func(f *domain.Fields, v any) { f.Type = firstSelectName(v) }},
	{"Team Member", func(f *domain.Fields, v any) { f.TeamMember = linkedIDs(v) }},
	{"Department", func(f *domain.Fields, v any) { f.Department = linkedIDs(v) }},
	{"Serial", func(f *domain.Fields, v any) { f.Serial = number(v) }},
	{"Select", func(f *domain.Fields, v any) { f.Select = truthy(v) }},
}

// Record builds a canonical record from a cell reader.
func Record(id string, createdTime any, r CellReader) domain.Record {
	f := domain.Fields{
		Coordinator: []string{},
		TeamMembers: []string{},
		Standby:     []string{},
		TeamMember:  []string{},
		Department:  []string{},
	}
	for _, rule := range rules {
		v, ok := read(r, rule.name)
		if !ok || v == nil {
			continue
		}
		rule.apply(&f, v)
	}
	return domain.Record{
		ID:          id,
		CreatedTime: timestamp(createdTime),
		Fields:      f,
	}
}

// FromREST builds a canonical record from a REST list element.
func FromREST(r RESTRecord) domain.Record {
	return Record(r.ID, r.CreatedTime, r)
}

// Records normalizes a slice of REST records, preserving order.
func Records(in []RESTRecord) []domain.Record {
	out := make([]domain.Record, 0, len(in))
	for _, r := range in {
		out = append(out, FromREST(r))
	}
	return out
}

// Decode reads either a list response ({"records": [...]}) or a bare JSON
// array of records.
func Decode(r io.Reader) ([]domain.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("normalize.Decode: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	var list []RESTRecord
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("normalize.Decode: %w", err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var resp struct {
			Records []RESTRecord `json:"records"`
		}
		if err := unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("normalize.Decode: %w", err)
		}
		list = resp.Records
	default:
		return nil, fmt.Errorf("normalize.Decode: expected object or array: %w", domain.ErrValidation)
	}
	return Records(list), nil
}

func unmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// read calls the reader and turns errors and panics into an absent value.
func read(r CellReader, field string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	v, err := r.CellValue(field)
	if err != nil {
		return nil, false
	}
	return v, true
}

func timestamp(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// text handles plain text, numbers, lookup arrays (first element) and
// single-select objects.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return text(t[0])
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case map[string]any:
		if name, ok := t["name"]; ok && name != nil {
			return scalar(name)
		}
		return ""
	}
	return scalar(v)
}

// selectName handles single-select objects and joins multi-select arrays.
func selectName(v any) string {
	switch t := v.(type) {
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				names = append(names, s)
			}
		}
		return strings.Join(names, ", ")
	case []string:
		return strings.Join(t, ", ")
	}
	return text(v)
}

// firstSelectName keeps only the first option of a multi-select.
func firstSelectName(v any) string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := text(item); s != "" {
				return s
			}
		}
		return ""
	case []string:
		for _, s := range t {
			if s != "" {
				return s
			}
		}
		return ""
	}
	return text(v)
}

// linkedIDs accepts arrays of {id, name} objects or plain id strings.
func linkedIDs(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, id := range t {
			if id != "" {
				out = append(out, id)
			}
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case string:
				if it != "" {
					out = append(out, it)
				}
			case map[string]any:
				if id, ok := it["id"].(string); ok && id != "" {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func number(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case []any:
		if len(t) == 0 {
			return nil
		}
		return number(t[0])
	default:
		return nil
	}
	return &f
}

// truthy mirrors checkbox semantics: any non-empty, non-false value counts.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	}
	return true
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(v)
}
