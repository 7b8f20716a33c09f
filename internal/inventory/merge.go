package inventory

import "github.com/mesh-intelligence/shelf/pkg/types"

// Merge reconciles the remote and local collections into one listing.
// Remote entries come first, then local entries, each in source order.
// A local record shadows any remote record with the same id. Within one
// source the first occurrence of an id wins. Remote records without an id
// cannot be addressed and are dropped. Local records without an id are
// kept so hand-edited data stays visible; they are the only records that
// may share an id in the result.
func Merge(remote, local []types.Book) []types.Book {
	localIDs := make(map[string]struct{}, len(local))
	for _, b := range local {
		if b.ID != "" {
			localIDs[b.ID] = struct{}{}
		}
	}

	out := make([]types.Book, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote))
	for _, b := range remote {
		if b.ID == "" {
			continue
		}
		if _, shadowed := localIDs[b.ID]; shadowed {
			continue
		}
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}

	seen = make(map[string]struct{}, len(local))
	for _, b := range local {
		if b.ID != "" {
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
		}
		out = append(out, b)
	}
	return out
}
