// ABOUTME: Tests for the shared pagination envelope
// ABOUTME: Page math, boundary flags, and past-the-end behavior
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateFirstPage(t *testing.T) {
	page := Paginate(items(23), 1, 10)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, page.Data)
	assert.Equal(t, 1, page.Pagination.Current)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 23, page.Pagination.TotalItems)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)
}

func TestPaginateLastPage(t *testing.T) {
	page := Paginate(items(23), 3, 10)

	assert.Equal(t, []int{21, 22, 23}, page.Data)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestPaginatePastTheEnd(t *testing.T) {
	page := Paginate(items(23), 4, 10)

	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 4, page.Pagination.Current)
	assert.False(t, page.Pagination.HasNext)
}

func TestPaginateEmptyCollection(t *testing.T) {
	page := Paginate([]int{}, 1, 10)

	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.Equal(t, 0, page.Pagination.TotalItems)
}

func TestPaginateClampsPageBelowOne(t *testing.T) {
	page := Paginate(items(5), 0, 10)

	assert.Len(t, page.Data, 5)
	assert.Equal(t, 1, page.Pagination.Current)
}

func TestPaginateClampsPageSizeBelowOne(t *testing.T) {
	page := Paginate(items(3), 1, 0)

	assert.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.True(t, page.Pagination.HasNext)
}

func TestPaginateExactMultiple(t *testing.T) {
	page := Paginate(items(20), 2, 10)

	assert.Len(t, page.Data, 10)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext)
}
