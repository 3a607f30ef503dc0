package drive

import "github.com/Project-Sylos/Folio/internal/types"

// crumbIndex returns the position of id in crumbs, or -1
func crumbIndex(crumbs []types.Breadcrumb, id *int64) int {
	for i, c := range crumbs {
		if types.SameID(c.ID, id) {
			return i
		}
	}
	return -1
}

// enterCrumb applies the navigation rule: entering a folder already on the
// trail truncates the trail to it; entering a new folder appends a crumb
// whose path extends the path of the current last crumb.
func enterCrumb(crumbs []types.Breadcrumb, id *int64, name string) []types.Breadcrumb {
	if len(crumbs) == 0 {
		crumbs = []types.Breadcrumb{types.RootCrumb()}
	}
	if i := crumbIndex(crumbs, id); i >= 0 {
		return cloneCrumbs(crumbs[:i+1])
	}

	last := crumbs[len(crumbs)-1]
	path := make([]int64, 0, len(last.Path)+1)
	path = append(path, last.Path...)
	path = append(path, *id)

	next := cloneCrumbs(crumbs)
	return append(next, types.Breadcrumb{ID: types.IDPtr(*id), Name: name, Path: path})
}

func cloneCrumbs(crumbs []types.Breadcrumb) []types.Breadcrumb {
	out := make([]types.Breadcrumb, len(crumbs))
	for i, c := range crumbs {
		out[i] = types.Breadcrumb{Name: c.Name, Path: append([]int64{}, c.Path...)}
		if c.ID != nil {
			out[i].ID = types.IDPtr(*c.ID)
		}
	}
	return out
}
