package content

import "github.com/Lydell2627/portfolio-sub000/internal/types"

// CategoryAll is the filter label that matches every project.
const CategoryAll = "All"

// Categories is the fixed, ordered set of filter labels. Projects whose
// category is not listed here are reachable only through CategoryAll.
var Categories = []string{
	CategoryAll,
	"Web Development",
	"E-commerce",
	"Branding",
	"UI/UX Design",
	"Mobile App",
}

// IsCategory reports whether label is one of Categories.
func IsCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// FilterResult is the outcome of filtering by one category. Empty is set
// when nothing matched, leaving recovery to the caller.
type FilterResult struct {
	Category string          `json:"category"`
	Projects []types.Project `json:"projects"`
	Empty    bool            `json:"empty"`
}

// Filter returns the projects in category. CategoryAll returns list unchanged.
func Filter(list []types.Project, category string) FilterResult {
	if category == CategoryAll {
		return FilterResult{Category: category, Projects: list, Empty: len(list) == 0}
	}

	matched := make([]types.Project, 0, len(list))
	for _, p := range list {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return FilterResult{Category: category, Projects: matched, Empty: len(matched) == 0}
}

// CategoryCount counts the projects in category. Pass the unfiltered list.
func CategoryCount(list []types.Project, category string) int {
	if category == CategoryAll {
		return len(list)
	}
	n := 0
	for _, p := range list {
		if p.Category == category {
			n++
		}
	}
	return n
}

// CategoryTab is one filter label with its count.
type CategoryTab struct {
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

// CategoryCounts returns a tab for every label in Categories, counted over
// the unfiltered list, with active marked as selected.
func CategoryCounts(list []types.Project, active string) []CategoryTab {
	tabs := make([]CategoryTab, len(Categories))
	for i, c := range Categories {
		tabs[i] = CategoryTab{Label: c, Count: CategoryCount(list, c), Active: c == active}
	}
	return tabs
}
