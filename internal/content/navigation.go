package content

import "github.com/Lydell2627/portfolio-sub000/internal/types"

// Neighbors are the projects before and after the current one. Either is nil
// at the ends of the list; there is no wraparound.
type Neighbors struct {
	Previous *types.Project `json:"previous"`
	Next     *types.Project `json:"next"`
}

// Adjacent finds currentSlug in list and returns its neighbours. An unknown
// slug has no neighbours.
func Adjacent(list []types.Project, currentSlug string) Neighbors {
	idx := -1
	for i := range list {
		if list[i].Slug == currentSlug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Neighbors{}
	}

	var n Neighbors
	if idx > 0 {
		prev := list[idx-1]
		n.Previous = &prev
	}
	if idx < len(list)-1 {
		next := list[idx+1]
		n.Next = &next
	}
	return n
}
