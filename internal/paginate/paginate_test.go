package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nums(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateShape(t *testing.T) {
	cases := []struct {
		count    int
		pageSize int
		pages    int
		lastLen  int
	}{
		{0, 5, 1, 0},
		{1, 5, 1, 1},
		{5, 5, 1, 5},
		{6, 5, 2, 1},
		{10, 5, 2, 5},
		{11, 5, 3, 1},
		{7, 3, 3, 1},
	}
	for _, tc := range cases {
		pages := Paginate(nums(tc.count), tc.pageSize, "/posts/")
		require.Len(t, pages, tc.pages, "count=%d size=%d", tc.count, tc.pageSize)

		for i, p := range pages {
			assert.Equal(t, i+1, p.Index)
			assert.Equal(t, tc.pages, p.Total)
			if i < len(pages)-1 {
				assert.Len(t, p.Items, tc.pageSize, "non-final page must be full")
			}
		}
		assert.Len(t, pages[len(pages)-1].Items, tc.lastLen)
	}
}

func TestPaginateZeroPageSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		pages := Paginate(nums(n), 0, "/posts/")
		require.Len(t, pages, 1, "n=%d", n)
		assert.Len(t, pages[0].Items, n)
		assert.Equal(t, 1, pages[0].Total)
		assert.Empty(t, pages[0].Prev)
		assert.Empty(t, pages[0].Next)
	}
}

func TestPaginatePreservesOrder(t *testing.T) {
	pages := Paginate([]string{"a", "b", "c", "d", "e"}, 2, "/posts/")
	require.Len(t, pages, 3)
	assert.Equal(t, []string{"a", "b"}, pages[0].Items)
	assert.Equal(t, []string{"c", "d"}, pages[1].Items)
	assert.Equal(t, []string{"e"}, pages[2].Items)
}

func TestPaginateLinks(t *testing.T) {
	pages := Paginate(nums(5), 2, "/tags/go/")
	require.Len(t, pages, 3)

	assert.Empty(t, pages[0].Prev)
	assert.Equal(t, "/tags/go/page/2/", pages[0].Next)

	assert.Equal(t, "/tags/go/", pages[1].Prev)
	assert.Equal(t, "/tags/go/page/3/", pages[1].Next)

	assert.Equal(t, "/tags/go/page/2/", pages[2].Prev)
	assert.Empty(t, pages[2].Next)
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/posts/", PageURL("/posts/", 1))
	assert.Equal(t, "/posts/page/2/", PageURL("/posts/", 2))
	assert.Equal(t, "/posts/page/10/", PageURL("/posts/", 10))
}
