package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/filmhub/internal/shared"
)

// AllCategory names the single category used when the server returns a bare movie list.
const AllCategory = "all"

// Category is one named, ordered movie list of the catalog.
type Category struct {
	Name   string
	Movies []Movie
}

// Catalog maps category names to movies, keeping the order the server sent them in.
type Catalog struct {
	Categories []Category
}

// Category returns the movies listed under name.
func (c Catalog) Category(name string) ([]Movie, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat.Movies, true
		}
	}
	return nil, false
}

// Names lists category names in server order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// Flatten returns every movie once, de-duplicated by external id in first-seen order.
func (c Catalog) Flatten() []Movie {
	lists := make([][]Movie, 0, len(c.Categories))
	for _, cat := range c.Categories {
		lists = append(lists, cat.Movies)
	}
	return DedupeMovies(lists...)
}

// Find looks a movie up by external id across all categories.
func (c Catalog) Find(externalID int) (*Movie, error) {
	for _, cat := range c.Categories {
		for _, m := range cat.Movies {
			if m.ExternalID == externalID {
				found := m
				return &found, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, externalID)
}

// UnmarshalJSON decodes either an object of category → movie array or a bare movie array.
//
// Object keys are read with the streaming tokenizer so their order survives.
// Values that are not arrays are skipped.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Catalog{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		var movies []Movie
		if err := json.Unmarshal(data, &movies); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		c.Categories = []Category{{Name: AllCategory, Movies: movies}}
		return nil
	case data[0] != '{':
		return fmt.Errorf("catalog: expected object or array, got %q", data[0])
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("catalog: category %q: %w", name, err)
		}
		if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '[' {
			continue
		}

		var movies []Movie
		if err := json.Unmarshal(raw, &movies); err != nil {
			return fmt.Errorf("catalog: category %q: %w", name, err)
		}
		c.Categories = append(c.Categories, Category{Name: name, Movies: movies})
	}

	return nil
}

// MarshalJSON encodes the catalog as an object, categories in order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		movies := cat.Movies
		if movies == nil {
			movies = []Movie{}
		}
		val, err := json.Marshal(movies)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
