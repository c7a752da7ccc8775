package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Template is a single library entry as served by /agwp/v1/templates.
type Template struct {
	ID              TemplateID      `json:"id"`
	Title           string          `json:"title"`
	Type            string          `json:"type"`
	Tags            []string        `json:"tags"`
	PopularityIndex PopularityIndex `json:"popularityIndex"`
	Timestamp       Epoch           `json:"timestamp"`
	Thumbnail       string          `json:"thumbnail"`
	URL             string          `json:"url"`
	IsPro           bool            `json:"is_pro"`
}

// CatalogResponse mirrors the templates endpoint payload.
type CatalogResponse struct {
	Templates []Template `json:"templates"`
	Count     int        `json:"count"`
	Timestamp Epoch      `json:"timestamp"`
}

// TemplateID identifies a template. The API sends ids as numbers or strings;
// both decode to the same string form.
type TemplateID string

// UnmarshalJSON accepts a JSON number or string.
func (id *TemplateID) UnmarshalJSON(data []byte) error {
	raw, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("template id: %w", err)
	}
	*id = TemplateID(raw)
	return nil
}

// MarshalJSON writes numeric ids as numbers so requests match what the
// server handed out.
func (id TemplateID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id TemplateID) String() string {
	return string(id)
}

// PopularityIndex ranks templates by use. Valid is false when the field was
// absent, null, not a number or outside the int range.
type PopularityIndex struct {
	Value int
	Valid bool
}

// UnmarshalJSON accepts numbers and numeric strings; anything else leaves the
// index missing rather than failing the whole catalog.
func (p *PopularityIndex) UnmarshalJSON(data []byte) error {
	*p = PopularityIndex{}
	raw, err := scalarText(data)
	if err != nil || raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return nil
	}
	*p = PopularityIndex{Value: int(f), Valid: true}
	return nil
}

// MarshalJSON writes null for a missing index.
func (p PopularityIndex) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.Value)), nil
}

// Epoch is a unix timestamp in seconds.
type Epoch int64

// UnmarshalJSON accepts a number or numeric string; empty and null are zero.
func (e *Epoch) UnmarshalJSON(data []byte) error {
	*e = 0
	raw, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", raw, err)
	}
	*e = Epoch(f)
	return nil
}

// Time converts the epoch to local time; zero stays the zero time.
func (e Epoch) Time() time.Time {
	if e <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(e), 0)
}

// scalarText returns the textual content of a JSON number, string or null.
func scalarText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
