package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func names(models []*RegisteredModel) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Name
	}
	return out
}

func TestSortModels_ByName(t *testing.T) {
	models := []*RegisteredModel{
		{Name: "beta", Seq: 1},
		{Name: "Alpha", Seq: 2},
		{Name: "alpha", Seq: 3},
	}

	SortModels(models, ModelSortByName, SortOrderAsc)
	assert.Equal(t, []string{"Alpha", "alpha", "beta"}, names(models))

	SortModels(models, ModelSortByName, SortOrderDesc)
	assert.Equal(t, []string{"beta", "alpha", "Alpha"}, names(models))
}

func TestSortModels_TiesUseCreationOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	models := []*RegisteredModel{
		{Name: "c", Description: "same", Seq: 3, CreatedAt: base.Add(time.Hour)},
		{Name: "a", Description: "same", Seq: 1, CreatedAt: base},
		{Name: "b", Description: "same", Seq: 2, CreatedAt: base},
	}

	SortModels(models, ModelSortByDescription, SortOrderDesc)
	assert.Equal(t, []string{"a", "b", "c"}, names(models))

	SortModels(models, ModelSortByCreationTime, SortOrderDesc)
	assert.Equal(t, []string{"c", "a", "b"}, names(models))
}

func TestSortModels_ByNumVersions(t *testing.T) {
	models := []*RegisteredModel{
		{Name: "one", NumVersions: 1, Seq: 1},
		{Name: "three", NumVersions: 3, Seq: 2},
		{Name: "two", NumVersions: 2, Seq: 3},
	}

	SortModels(models, ModelSortByNumVersions, SortOrderDesc)
	assert.Equal(t, []string{"three", "two", "one"}, names(models))
}

func TestSortModelsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		models := make([]*RegisteredModel, n)
		for i := range models {
			models[i] = &RegisteredModel{
				Name:        rapid.SampledFrom([]string{"a", "B", "b", "c"}).Draw(t, "name"),
				NumVersions: rapid.IntRange(0, 3).Draw(t, "versions"),
				Seq:         int64(i + 1),
			}
		}
		sortBy := rapid.SampledFrom([]ModelSortBy{ModelSortByName, ModelSortByNumVersions}).Draw(t, "sortBy")
		order := rapid.SampledFrom([]SortOrder{SortOrderAsc, SortOrderDesc}).Draw(t, "order")

		SortModels(models, sortBy, order)

		for i := 1; i < len(models); i++ {
			c := compareModels(models[i-1], models[i], sortBy)
			if order == SortOrderDesc {
				c = -c
			}
			assert.LessOrEqual(t, c, 0, "out of order at %d", i)
			if c == 0 {
				assert.Less(t, models[i-1].Seq, models[i].Seq, "tie not broken by creation order")
			}
		}
	})
}

func TestParseModelSortBy(t *testing.T) {
	sb, err := ParseModelSortBy("")
	assert.NoError(t, err)
	assert.Equal(t, ModelSortByName, sb)

	sb, err = ParseModelSortBy(string(ModelSortByNumVersions))
	assert.NoError(t, err)
	assert.Equal(t, ModelSortByNumVersions, sb)

	_, err = ParseModelSortBy("bogus")
	assert.ErrorIs(t, err, ErrInvalidSortBy)
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortOrderAsc, "asc": SortOrderAsc, "DESC": SortOrderDesc} {
		got, err := ParseSortOrder(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSortOrder("sideways")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}
