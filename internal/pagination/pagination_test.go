package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		size int
		want Page
	}{
		{
			name: "empty",
			raw:  "",
			size: 6,
			want: Page{Number: 1, Size: 6},
		},
		{
			name: "valid",
			raw:  "3",
			size: 10,
			want: Page{Number: 3, Size: 10},
		},
		{
			name: "negative",
			raw:  "-2",
			size: 6,
			want: Page{Number: 1, Size: 6},
		},
		{
			name: "garbage",
			raw:  "two",
			size: 6,
			want: Page{Number: 1, Size: 6},
		},
		{
			name: "default size",
			raw:  "2",
			size: 0,
			want: Page{Number: 2, Size: DefaultPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Parse(tt.raw, tt.size))
		})
	}
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Page{Number: 1, Size: 6}.Offset())
	assert.Equal(t, 12, Page{Number: 3, Size: 6}.Offset())
}

func TestPage_Clamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number int
		total  int
		want   int
	}{
		{number: 2, total: 3, want: 2},
		{number: 4, total: 3, want: 3},
		{number: math.MaxInt, total: 3, want: 3},
		{number: 0, total: 3, want: 1},
		{number: -5, total: 3, want: 1},
		{number: 3, total: 0, want: 1},
	}

	for _, test := range tests {
		page := Page{Number: test.number, Size: 6}.Clamp(test.total)
		assert.Equal(t, test.want, page.Number, test)
		assert.Equal(t, 6, page.Size)
		assert.GreaterOrEqual(t, page.Offset(), 0, test)
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(1, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 0, TotalPages(7, 0))
}

func TestLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		current, total int
		want           []int
	}{
		{
			name:    "no pages",
			current: 1,
			total:   0,
			want:    nil,
		},
		{
			name:    "all pages fit",
			current: 2,
			total:   5,
			want:    []int{1, 2, 3, 4, 5},
		},
		{
			name:    "near the start",
			current: 2,
			total:   10,
			want:    []int{1, 2, 3, Ellipsis, 9, 10},
		},
		{
			name:    "near the end",
			current: 9,
			total:   10,
			want:    []int{1, 2, Ellipsis, 8, 9, 10},
		},
		{
			name:    "middle",
			current: 5,
			total:   10,
			want:    []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Links(tt.current, tt.total))
		})
	}
}
