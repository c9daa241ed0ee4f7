package commentservice

import "sort"

// RootKey is the sentinel parent key for top-level comments.
const RootKey int64 = 0

// Thread is a parent-id to children adjacency map. Rendering starts at
// RootKey and looks up each comment's replies by its own id.
type Thread map[int64][]Comment

// BuildThread groups a flat comment list into a reply forest. Comments whose
// parent id does not appear in the list are orphans and are dropped rather
// than surfaced or treated as an error. Roots are ordered newest first so
// fresh discussions surface; replies within a thread read oldest first.
func BuildThread(flat []Comment) Thread {
	present := make(map[int64]struct{}, len(flat))
	for _, c := range flat {
		present[c.ID] = struct{}{}
	}

	thread := make(Thread)
	for _, c := range flat {
		key := RootKey
		if c.ParentID != nil {
			if _, ok := present[*c.ParentID]; !ok {
				continue
			}
			key = *c.ParentID
		}
		thread[key] = append(thread[key], c)
	}

	for key, children := range thread {
		children := children
		if key == RootKey {
			sort.SliceStable(children, func(i, j int) bool {
				return children[i].CreatedAt.After(children[j].CreatedAt)
			})
		} else {
			sort.SliceStable(children, func(i, j int) bool {
				return children[i].CreatedAt.Before(children[j].CreatedAt)
			})
		}
	}

	return thread
}

// Walk visits the thread depth-first from the roots, calling fn with each
// comment and its nesting depth. Depth is unbounded; the tree is finite
// because parents always exist before their children.
func (t Thread) Walk(fn func(c Comment, depth int)) {
	var visit func(key int64, depth int)
	visit = func(key int64, depth int) {
		for _, c := range t[key] {
			fn(c, depth)
			visit(c.ID, depth+1)
		}
	}
	visit(RootKey, 0)
}
