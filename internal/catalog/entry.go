package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the sentinel for a year or resolution that could not be derived.
const Unknown = "Unknown"

// Defaults for fields the scanner cannot derive.
const (
	DefaultGenre       = Unknown
	DefaultDescription = "No description."
)

// Year is a release year: either four decimal digits or Unknown.
type Year string

// YearUnknown is the zero-information year.
const YearUnknown Year = Unknown

// IsKnown reports whether y holds a numeric year.
func (y Year) IsKnown() bool {
	if y == "" || y == YearUnknown {
		return false
	}
	_, err := strconv.Atoi(string(y))
	return err == nil
}

// MarshalJSON always writes a string.
func (y Year) MarshalJSON() ([]byte, error) {
	if y == "" {
		y = YearUnknown
	}
	return json.Marshal(string(y))
}

// UnmarshalJSON accepts a number or a string. Strings that are not a year
// become YearUnknown.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = YearUnknown
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if _, err := strconv.Atoi(s); err != nil {
			*y = YearUnknown
			return nil
		}
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("year: %w", err)
		}
		i = int64(f)
	}
	*y = Year(strconv.FormatInt(i, 10))
	return nil
}

// Entry is one cataloged movie file.
type Entry struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SourcePath      string   `json:"path"`
	Genre           string   `json:"genre"`
	ReleaseYear     Year     `json:"year"`
	Rating          *float64 `json:"rating"`
	DurationSeconds int64    `json:"duration"`
	Resolution      string   `json:"resolution"`
	SizeBytes       int64    `json:"size"`
	PreviewAsset    *string  `json:"thumbnail"`
	Description     string   `json:"description"`
	CreatedAtEpoch  int64    `json:"date_added"`
}

// HasPreview reports whether the entry references a preview asset.
func (e *Entry) HasPreview() bool {
	return e.PreviewAsset != nil && *e.PreviewAsset != ""
}

// clone returns a copy that shares no pointers with e.
func (e Entry) clone() Entry {
	if e.Rating != nil {
		r := *e.Rating
		e.Rating = &r
	}
	if e.PreviewAsset != nil {
		p := *e.PreviewAsset
		e.PreviewAsset = &p
	}
	return e
}

// UnmarshalJSON tolerates legacy documents: numeric ids, fractional
// durations and sizes, and missing optional fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		ID       json.RawMessage `json:"id"`
		Duration json.Number     `json:"duration"`
		Size     json.Number     `json:"size"`
		Added    json.Number     `json:"date_added"`
		*plain
	}{plain: (*plain)(e)}

	e.Genre = DefaultGenre
	e.Description = DefaultDescription
	e.ReleaseYear = YearUnknown
	e.Resolution = Unknown

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	e.ID = id
	e.DurationSeconds = numberToInt(aux.Duration)
	e.SizeBytes = numberToInt(aux.Size)
	e.CreatedAtEpoch = numberToInt(aux.Added)
	return nil
}

// decodeID returns the id as a string whether it was stored as one or as a number.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	return n.String(), nil
}

func numberToInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return max(i, 0)
	}
	if f, err := n.Float64(); err == nil && f > 0 {
		return int64(f)
	}
	return 0
}
