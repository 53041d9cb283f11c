package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize(20)
	assert.Equal(t, PageRequest{Page: 1, Limit: 20}, p)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, Limit: 500}.Normalize(10)
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPaginationRoundsPagesUp(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 21, Pages: 3}, NewPagination(PageRequest{Page: 1, Limit: 10}, 21))
	assert.Equal(t, 0, NewPagination(PageRequest{Page: 1, Limit: 10}, 0).Pages)
	assert.Equal(t, 2, NewPagination(PageRequest{Page: 2, Limit: 10}, 20).Pages)
}
