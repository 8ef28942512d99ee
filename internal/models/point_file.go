package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Layouts reported by ParsePointsFile, detected from the first entry.
const (
	LayoutSpanish = "es" // contenidoPagina / metadatos
	LayoutEnglish = "en" // pageContent / metadata
	LayoutUnknown = "unknown"
)

// Reasons an entry is skipped.
const (
	SkipNotObject    = "not an object"
	SkipEmptyContent = "empty content"
)

// ErrNoPoints is returned when an import file holds no usable entries.
var ErrNoPoints = errors.New("import file contains no points")

// SkippedPoint is an entry ParsePointsFile rejected.
type SkippedPoint struct {
	Index  int // 1-based position in the file
	Reason string
}

// PointsFile is a parsed knowledge-base import file.
type PointsFile struct {
	Layout  string
	Points  []PointInput
	Skipped []SkippedPoint
}

// ParsePointsFile reads a JSON array of points. Each entry is judged on its
// own: entries that are not objects, or whose content is empty after
// trimming, are skipped and reported while the rest are kept.
//
// Content is pageContent when set and non-empty, else contenidoPagina.
// Numbers and booleans are taken as their text. Metadata is the metadata
// object when present, else metadatos, else empty.
func ParsePointsFile(r io.Reader) (*PointsFile, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid import file: expected a JSON array of points: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoPoints
	}

	out := &PointsFile{Layout: LayoutUnknown}
	for i, entry := range raw {
		fields, ok := objectFields(entry)
		if i == 0 && ok {
			out.Layout = detectLayout(fields)
		}
		if !ok {
			out.Skipped = append(out.Skipped, SkippedPoint{Index: i + 1, Reason: SkipNotObject})
			continue
		}

		content, ok := textField(fields["pageContent"])
		if !ok {
			content, _ = textField(fields["contenidoPagina"])
		}
		content = strings.TrimSpace(content)
		if content == "" {
			out.Skipped = append(out.Skipped, SkippedPoint{Index: i + 1, Reason: SkipEmptyContent})
			continue
		}

		metadata, ok := objectValue(fields["metadata"])
		if !ok {
			if metadata, ok = objectValue(fields["metadatos"]); !ok {
				metadata = map[string]any{}
			}
		}
		out.Points = append(out.Points, PointInput{PageContent: content, Metadata: metadata})
	}

	if len(out.Points) == 0 {
		return out, ErrNoPoints
	}
	return out, nil
}

func detectLayout(fields map[string]json.RawMessage) string {
	if _, ok := textField(fields["contenidoPagina"]); ok {
		return LayoutSpanish
	}
	if _, ok := textField(fields["pageContent"]); ok {
		return LayoutEnglish
	}
	return LayoutUnknown
}

// objectFields splits a JSON object into its raw members. Anything else,
// null included, reports false.
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if b := bytes.TrimSpace(raw); len(b) == 0 || b[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func objectValue(raw json.RawMessage) (map[string]any, bool) {
	if _, ok := objectFields(raw); !ok {
		return nil, false
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// textField returns the text of a string, number or boolean member. It
// reports false for missing, null, empty, zero and false values, and for
// objects and arrays.
func textField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil || f == 0 {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case bool:
		return "true", t
	default:
		return "", false
	}
}
