package types

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestBookUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Book
		wantExtra []string
	}{
		{
			name:  "local schema",
			input: `{"id":"_abc","title":"Dune","author":"Frank Herbert","publisher":"Chilton","publication_year":1965,"pages":412,"isbn":"978-0441013593","description":"Spice","language":"English"}`,
			want: Book{
				ID: "_abc", Title: "Dune", Author: "Frank Herbert", Publisher: "Chilton",
				PublicationYear: intPtr(1965), Pages: 412, ISBN: "978-0441013593",
				Description: "Spice", Language: "English",
			},
		},
		{
			name:  "numeric remote id",
			input: `{"id":42,"title":"Remote"}`,
			want:  Book{ID: "42", Title: "Remote"},
		},
		{
			name:  "numeric strings from a form",
			input: `{"pages":"150","publication_year":" 1999 "}`,
			want:  Book{Pages: 150, PublicationYear: intPtr(1999)},
		},
		{
			name:  "whole float pages",
			input: `{"pages":150.0}`,
			want:  Book{Pages: 150},
		},
		{
			name:  "empty year string is absent",
			input: `{"publication_year":"","isbn":null}`,
			want:  Book{},
		},
		{
			name:      "fractional pages kept raw",
			input:     `{"pages":12.5}`,
			wantExtra: []string{FieldPages},
		},
		{
			name:      "non-numeric year kept raw",
			input:     `{"publication_year":"nineteen"}`,
			wantExtra: []string{FieldPublicationYear},
		},
		{
			name:      "unknown remote fields pass through",
			input:     `{"id":"1","genre":["Fiction"],"cover_image":"x.png"}`,
			want:      Book{ID: "1"},
			wantExtra: []string{"genre", "cover_image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Book
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))

			for _, key := range tt.wantExtra {
				assert.Contains(t, got.Extra, key)
			}
			assert.Len(t, got.Extra, len(tt.wantExtra))

			got.Extra = nil
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestBookMarshalJSONRoundTripPreservesExtra(t *testing.T) {
	input := `{"id":7,"title":"Remote","author":"A","publisher":"P","pages":10,"genre":["Fiction","Drama"],"rating":4.5}`

	var b Book
	require.NoError(t, json.Unmarshal([]byte(input), &b))

	out, err := json.Marshal(b)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, 7.0, generic["id"])
	assert.Equal(t, []any{"Fiction", "Drama"}, generic["genre"])
	assert.Equal(t, 4.5, generic["rating"])
	assert.NotContains(t, generic, FieldISBN, "unset optional fields are omitted")
	assert.NotContains(t, generic, FieldPublicationYear)
}

func TestBookMarshalJSONDecodedPassesThrough(t *testing.T) {
	tests := []string{
		`{"id":7,"name":"x","pages":"150"}`,
		`{"author":"Harper Lee","cover_image":"x.png","id":1,"publication_year":1960,"title":"To Kill a Mockingbird"}`,
		`{"id":"2","isbn":null,"publication_year":"","title":null}`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			var b Book
			require.NoError(t, json.Unmarshal([]byte(input), &b))

			out, err := json.Marshal(b)
			require.NoError(t, err)
			assert.Equal(t, input, string(out))
		})
	}
}

func TestBookMarshalJSONDecodedWithEdits(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"pages":"150","title":"Old"}`), &b))

	b.Title = "New"
	b.Pages = 0
	out, err := json.Marshal(b.WithID("8"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"8","pages":0,"title":"New"}`, string(out))
}

func TestBookMarshalJSONCanonical(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"x","pages":"150"}`), &b))

	out, err := json.Marshal(b.Canonical())
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"","id":"7","name":"x","pages":150,"publisher":"","title":""}`, string(out))

	out, err = json.Marshal(Book{Title: "T"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"","id":"","pages":0,"publisher":"","title":"T"}`, string(out))
}

func TestBookEqualIgnoresEncoding(t *testing.T) {
	var decoded Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"pages":"150","publication_year":1999}`), &decoded))

	assert.True(t, decoded.Equal(Book{ID: "7", Pages: 150, PublicationYear: intPtr(1999)}))
	assert.False(t, decoded.Equal(Book{ID: "7", Pages: 150}))
	assert.False(t, decoded.Equal(Book{ID: "7", Pages: 150, PublicationYear: intPtr(2000)}))
	assert.False(t, Book{Extra: map[string]json.RawMessage{"a": json.RawMessage(`1`)}}.Equal(Book{}))
}

func TestBookMarshalJSONKeepsMalformedRawValue(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","pages":"many"}`), &b))
	require.True(t, b.HasRaw(FieldPages))

	out, err := json.Marshal(b)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, "many", generic[FieldPages])
}

func TestBookCloneIsDeep(t *testing.T) {
	orig := Book{
		ID:              "1",
		PublicationYear: intPtr(2001),
		Extra:           map[string]json.RawMessage{"genre": json.RawMessage(`"x"`)},
	}
	c := orig.Clone()
	*c.PublicationYear = 1999
	c.Extra["genre"] = json.RawMessage(`"y"`)

	assert.Equal(t, 2001, *orig.PublicationYear)
	assert.Equal(t, json.RawMessage(`"x"`), orig.Extra["genre"])
}

func TestBookWithID(t *testing.T) {
	b := Book{Title: "T"}
	c := b.WithID("abc")
	assert.Equal(t, "abc", c.ID)
	assert.Empty(t, b.ID)
}

func TestBookHasRaw(t *testing.T) {
	b := Book{Extra: map[string]json.RawMessage{
		"a": json.RawMessage(`null`),
		"b": json.RawMessage(`""`),
		"c": json.RawMessage(`"x"`),
	}}
	assert.False(t, b.HasRaw("a"))
	assert.False(t, b.HasRaw("b"))
	assert.True(t, b.HasRaw("c"))
	assert.False(t, b.HasRaw("missing"))
}
