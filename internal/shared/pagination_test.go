package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	page := Paginate(items, 1, 20)
	require.Len(t, page.Data, 20)
	require.Equal(t, 0, page.Data[0])
	require.Equal(t, 45, page.Pagination.Total)
	require.Equal(t, 3, page.Pagination.TotalPages)

	page = Paginate(items, 3, 20)
	require.Len(t, page.Data, 5)
	require.Equal(t, 40, page.Data[0])

	// Past the end is an empty page, not an error.
	page = Paginate(items, 9, 20)
	require.Empty(t, page.Data)
	require.Equal(t, 9, page.Pagination.Page)
}

func TestParsePageQuery(t *testing.T) {
	page, perPage := ParsePageQuery(url.Values{})
	require.Equal(t, 1, page)
	require.Equal(t, DefaultPerPage, perPage)

	page, perPage = ParsePageQuery(url.Values{"page": {"3"}, "per_page": {"50"}})
	require.Equal(t, 3, page)
	require.Equal(t, 50, perPage)

	page, perPage = ParsePageQuery(url.Values{"page": {"-1"}, "per_page": {"abc"}})
	require.Equal(t, 1, page)
	require.Equal(t, DefaultPerPage, perPage)
}
