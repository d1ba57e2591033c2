package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilterNormalize(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults applied", 0, 0, 1, 10},
		{"negative values", -5, -5, 1, 10},
		{"limit clamped to max", 1, 500, 1, 100},
		{"valid values untouched", 3, 25, 3, 25},
		{"limit at max boundary", 2, 100, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ListFilter{Page: tt.page, Limit: tt.limit}
			f.Normalize()

			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLimit, f.Limit)
		})
	}
}

func TestListFilterOffset(t *testing.T) {
	f := ListFilter{Page: 3, Limit: 10}
	assert.Equal(t, 20, f.Offset())

	f = ListFilter{Page: 1, Limit: 25}
	assert.Equal(t, 0, f.Offset())
}

func TestListResultTotalPages(t *testing.T) {
	r := ListResult[int]{TotalCount: 25, Limit: 10}
	assert.Equal(t, 3, r.TotalPages())

	r = ListResult[int]{TotalCount: 30, Limit: 10}
	assert.Equal(t, 3, r.TotalPages())

	r = ListResult[int]{TotalCount: 0, Limit: 10}
	assert.Equal(t, 0, r.TotalPages())
}
