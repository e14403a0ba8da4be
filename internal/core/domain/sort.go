package domain

import (
	"sort"
	"strings"
)

// SortModels orders models in place by sortBy and order. Strings compare
// byte-wise (case-sensitive). Equal keys keep creation order (ascending Seq)
// in both directions.
func SortModels(models []*RegisteredModel, sortBy ModelSortBy, order SortOrder) {
	sort.SliceStable(models, func(i, j int) bool {
		a, b := models[i], models[j]
		c := compareModels(a, b, sortBy)
		if c == 0 {
			return a.Seq < b.Seq
		}
		if order == SortOrderDesc {
			return c > 0
		}
		return c < 0
	})
}

func compareModels(a, b *RegisteredModel, sortBy ModelSortBy) int {
	switch sortBy {
	case ModelSortByDescription:
		return strings.Compare(a.Description, b.Description)
	case ModelSortByCreationTime:
		return a.CreatedAt.Compare(b.CreatedAt)
	case ModelSortByLastUpdatedTime:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case ModelSortByNumVersions:
		return a.NumVersions - b.NumVersions
	default:
		return strings.Compare(a.Name, b.Name)
	}
}
