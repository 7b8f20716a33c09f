package types

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// JSON keys of the book schema.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldAuthor          = "author"
	FieldPublisher       = "publisher"
	FieldPublicationYear = "publication_year"
	FieldPages           = "pages"
	FieldISBN            = "isbn"
	FieldDescription     = "description"
	FieldLanguage        = "language"
)

// Book is a single inventory record. Records fetched from the remote
// collection may carry fields outside this schema; they are kept in Extra
// and written back unchanged.
type Book struct {
	ID              string // Opaque id. Remote ids may arrive as JSON numbers.
	Title           string
	Author          string
	Publisher       string
	PublicationYear *int // nil when absent.
	Pages           int
	ISBN            string
	Description     string
	Language        string

	// Extra holds unknown fields and known fields whose values could not be
	// decoded into their Go type.
	Extra map[string]json.RawMessage

	// src is set on books decoded from JSON. Known fields left unchanged
	// since decoding are written back with their original bytes, and
	// required fields the source never carried stay absent.
	src *source
}

// source records how a decoded book looked on the wire. It is never
// mutated after decoding, so copies of a Book share it.
type source struct {
	raw  map[string]json.RawMessage // known keys that decoded cleanly
	book Book                       // typed values as decoded
}

// Canonical returns a copy of b that encodes in the local schema: typed
// values are re-encoded and every required field is written. Records
// authored locally are stored in this form.
func (b Book) Canonical() Book {
	c := b.Clone()
	c.src = nil
	return c
}

// Equal reports whether b and o hold the same field values. How either
// book was encoded on the wire is not compared.
func (b Book) Equal(o Book) bool {
	if b.ID != o.ID || b.Title != o.Title || b.Author != o.Author ||
		b.Publisher != o.Publisher || b.Pages != o.Pages || b.ISBN != o.ISBN ||
		b.Description != o.Description || b.Language != o.Language {
		return false
	}
	if !sameYear(b.PublicationYear, o.PublicationYear) {
		return false
	}
	if len(b.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range b.Extra {
		w, ok := o.Extra[k]
		if !ok || !bytes.Equal(v, w) {
			return false
		}
	}
	return true
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Clone returns a deep copy of b.
func (b Book) Clone() Book {
	c := b
	if b.PublicationYear != nil {
		y := *b.PublicationYear
		c.PublicationYear = &y
	}
	if b.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(b.Extra))
		for k, v := range b.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// WithID returns a copy of b carrying id.
func (b Book) WithID(id string) Book {
	c := b.Clone()
	c.ID = id
	return c
}

// HasRaw reports whether Extra holds a non-empty value for key. A known
// field that failed to decode ends up here, so validators use HasRaw to
// tell "absent" from "present but malformed".
func (b Book) HasRaw(key string) bool {
	raw, ok := b.Extra[key]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte(`""`))
}

// MarshalJSON writes Extra first and the typed fields over it. Optional
// fields that are unset are omitted. A decoded book writes unchanged
// fields with their original bytes and omits required fields its source
// never had; other books always write required fields.
func (b Book) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b.Extra)+9)
	for k, v := range b.Extra {
		out[k] = v
	}

	authored := b.src == nil
	src := b.src
	if src == nil {
		src = &source{}
	}
	was := src.book

	fields := []struct {
		key       string
		value     any
		set       bool
		required  bool
		unchanged bool
	}{
		{FieldID, b.ID, b.ID != "", true, b.ID == was.ID},
		{FieldTitle, b.Title, b.Title != "", true, b.Title == was.Title},
		{FieldAuthor, b.Author, b.Author != "", true, b.Author == was.Author},
		{FieldPublisher, b.Publisher, b.Publisher != "", true, b.Publisher == was.Publisher},
		{FieldPublicationYear, b.PublicationYear, b.PublicationYear != nil, false, sameYear(b.PublicationYear, was.PublicationYear)},
		{FieldPages, b.Pages, b.Pages != 0, true, b.Pages == was.Pages},
		{FieldISBN, b.ISBN, b.ISBN != "", false, b.ISBN == was.ISBN},
		{FieldDescription, b.Description, b.Description != "", false, b.Description == was.Description},
		{FieldLanguage, b.Language, b.Language != "", false, b.Language == was.Language},
	}
	for _, f := range fields {
		raw, had := src.raw[f.key]
		if had && f.unchanged {
			out[f.key] = raw
			continue
		}
		if !f.set {
			if _, kept := out[f.key]; kept {
				continue
			}
			if !f.required || !(authored || had) {
				continue
			}
		}
		enc, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		out[f.key] = enc
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a book object. Numeric strings decode into integer
// fields and numeric ids decode into strings. Values that do not fit their
// field are preserved in Extra.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book{}
	known := make(map[string]json.RawMessage)
	for key, val := range raw {
		val = append(json.RawMessage(nil), val...)

		var ok bool
		switch key {
		case FieldID:
			b.ID, ok = decodeID(val)
		case FieldTitle:
			b.Title, ok = decodeString(val)
		case FieldAuthor:
			b.Author, ok = decodeString(val)
		case FieldPublisher:
			b.Publisher, ok = decodeString(val)
		case FieldPublicationYear:
			b.PublicationYear, ok = decodeOptionalInt(val)
		case FieldPages:
			var pages *int
			pages, ok = decodeOptionalInt(val)
			if ok && pages != nil {
				b.Pages = *pages
			}
		case FieldISBN:
			b.ISBN, ok = decodeString(val)
		case FieldDescription:
			b.Description, ok = decodeString(val)
		case FieldLanguage:
			b.Language, ok = decodeString(val)
		}

		if !ok {
			if b.Extra == nil {
				b.Extra = make(map[string]json.RawMessage)
			}
			b.Extra[key] = val
			continue
		}
		known[key] = val
	}

	was := b.Clone()
	was.Extra = nil
	b.src = &source{raw: known, book: was}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString accepts a JSON string or null.
func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeID accepts a JSON string, a JSON number, or null.
func decodeID(raw json.RawMessage) (string, bool) {
	if s, ok := decodeString(raw); ok {
		return s, true
	}
	text := string(bytes.TrimSpace(raw))
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return "", false
	}
	return text, true
}

// decodeOptionalInt accepts a whole JSON number, a string holding one,
// an empty string, or null. Empty string and null decode to nil.
func decodeOptionalInt(raw json.RawMessage) (*int, bool) {
	if isNull(raw) {
		return nil, true
	}

	var f float64
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	} else if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, false
	}

	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, false
	}
	n := int(f)
	return &n, true
}
