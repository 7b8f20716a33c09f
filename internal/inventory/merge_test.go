package inventory

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func books(ids ...string) []types.Book {
	out := make([]types.Book, len(ids))
	for i, id := range ids {
		out[i] = types.Book{ID: id, Title: "t" + id}
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		remote []types.Book
		local  []types.Book
		want   []types.Book
	}{
		{
			name: "both empty",
			want: []types.Book{},
		},
		{
			name:   "remote then local",
			remote: books("1", "2"),
			local:  books("a", "b"),
			want:   books("1", "2", "a", "b"),
		},
		{
			name:   "local shadows remote",
			remote: books("1", "2", "3"),
			local:  []types.Book{{ID: "2", Title: "local two"}},
			want: []types.Book{
				{ID: "1", Title: "t1"},
				{ID: "3", Title: "t3"},
				{ID: "2", Title: "local two"},
			},
		},
		{
			name:   "duplicates within a source keep the first",
			remote: []types.Book{{ID: "1", Title: "first"}, {ID: "1", Title: "second"}},
			local:  []types.Book{{ID: "a", Title: "first"}, {ID: "a", Title: "second"}},
			want:   []types.Book{{ID: "1", Title: "first"}, {ID: "a", Title: "first"}},
		},
		{
			name:   "remote records without an id are dropped",
			remote: []types.Book{{Title: "r1"}, {ID: "1", Title: "t1"}, {Title: "r2"}},
			local:  []types.Book{{Title: "l"}},
			want:   []types.Book{{ID: "1", Title: "t1"}, {Title: "l"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.remote, tt.local)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	remote := books("1", "2")
	local := books("2")
	Merge(remote, local)
	if diff := cmp.Diff(books("1", "2"), remote); diff != "" {
		t.Errorf("remote modified (-want +got):\n%s", diff)
	}
}
