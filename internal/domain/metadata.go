package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Metadata keys understood by the retrieval pipeline.
const (
	KeyFile       = "file"
	KeyCaseNumber = "case_number"
	KeyCourt      = "court"
	KeyDate       = "date"
	KeyCaseData   = "case_data"
)

// Metadata describes the source of a passage. Every field is optional; an
// empty string means absent.
type Metadata struct {
	File       string
	CaseNumber string
	Court      string
	Date       string
	// Extra holds any other keys stored alongside the passage.
	Extra map[string]any

	// known keeps the stored values of the known keys that were present.
	known map[string]any
}

// ParseMetadata validates an index payload value into Metadata.
// A nil value yields empty metadata.
func ParseMetadata(raw any) (Metadata, error) {
	if raw == nil {
		return Metadata{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return Metadata{}, fmt.Errorf("%w: got %T", ErrMalformedMetadata, raw)
	}
	var md Metadata
	for k, v := range m {
		var dst *string
		switch k {
		case KeyFile:
			dst = &md.File
		case KeyCaseNumber:
			dst = &md.CaseNumber
		case KeyCourt:
			dst = &md.Court
		case KeyDate:
			dst = &md.Date
		default:
			if md.Extra == nil {
				md.Extra = make(map[string]any)
			}
			md.Extra[k] = v
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %q: %v", ErrMalformedMetadata, k, err)
		}
		*dst = s
		if md.known == nil {
			md.known = make(map[string]any, 4)
		}
		md.known[k] = v
	}
	return md, nil
}

// scalarString renders a scalar metadata value as text. Whole floats print
// without an exponent, so 2019 stays "2019".
func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case json.Number:
		return x.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("not a scalar: %T", v)
	}
}

// Map renders the metadata as an open mapping. Known keys that were parsed
// keep their stored values, empty or not; known fields set directly appear
// only when non-empty.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+4)
	maps.Copy(out, m.Extra)
	set := func(k, v string) {
		if raw, ok := m.known[k]; ok {
			out[k] = raw
			return
		}
		if v != "" {
			out[k] = v
		}
	}
	set(KeyFile, m.File)
	set(KeyCaseNumber, m.CaseNumber)
	set(KeyCourt, m.Court)
	set(KeyDate, m.Date)
	return out
}
