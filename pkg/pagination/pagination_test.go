package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateWindowSlidesAtEdges(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Paginate(200, 1, 10).VisiblePages)
	assert.Equal(t, []int{16, 17, 18, 19, 20}, Paginate(200, 19, 10).VisiblePages)
	assert.Equal(t, []int{8, 9, 10, 11, 12}, Paginate(200, 10, 10).VisiblePages)
	assert.Equal(t, []int{1, 2, 3}, Paginate(25, 2, 10).VisiblePages)
}

func TestPaginateEmptyCollection(t *testing.T) {
	p := Paginate(0, 4, 10)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 0, p.StartItem)
	assert.Equal(t, 0, p.EndItem)
	assert.Equal(t, []int{1}, p.VisiblePages)
	lo, hi := p.Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

func TestPaginateClampsOutOfRangePage(t *testing.T) {
	p := Paginate(25, 9, 10)
	assert.Equal(t, 3, p.CurrentPage)
	assert.Equal(t, 21, p.StartItem)
	assert.Equal(t, 25, p.EndItem)

	p = Paginate(25, -3, 10)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.StartItem)
	assert.Equal(t, 10, p.EndItem)
}

func TestPaginateBoundsProperty(t *testing.T) {
	for total := 0; total <= 60; total++ {
		for size := 1; size <= 12; size++ {
			for page := -2; page <= 15; page++ {
				p := Paginate(total, page, size)
				require.GreaterOrEqual(t, p.CurrentPage, 1)
				require.LessOrEqual(t, p.CurrentPage, p.TotalPages)
				require.LessOrEqual(t, len(p.VisiblePages), WindowSize)
				require.Contains(t, p.VisiblePages, p.CurrentPage)
				if total == 0 {
					require.Zero(t, p.StartItem)
					require.Zero(t, p.EndItem)
					continue
				}
				require.LessOrEqual(t, p.StartItem, p.EndItem)
				require.LessOrEqual(t, p.EndItem, total)
				require.Equal(t, p, Paginate(total, page, size))
			}
		}
	}
}

func TestPaginateNormalisesPageSize(t *testing.T) {
	p := Paginate(30, 1, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 3, p.TotalPages)
}

func TestStateApplyStoresClampedPage(t *testing.T) {
	s := NewState(10)
	s.Page = 3
	p := s.Apply(6)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, s.Page)

	s.Page = 2
	s.SetPageSize(25)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 25, s.PageSize)
}
