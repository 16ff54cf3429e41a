package datatables

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_FullForm(t *testing.T) {
	form := url.Values{}
	form.Set("draw", "3")
	form.Set("start", "20")
	form.Set("length", "10")
	form.Set("search[value]", "cake")
	form.Set("order[0][column]", "1")
	form.Set("order[0][dir]", "asc")
	form.Set("columns[0][name]", "name")
	form.Set("columns[1][name]", "createdAt")
	form.Set("columns[2][name]", "isActive")

	r := httptest.NewRequest("POST", "/admin/categories/datatable", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req := FromRequest(r)
	assert.Equal(t, 3, req.Draw)
	assert.Equal(t, 20, req.Start)
	assert.Equal(t, 10, req.Length)
	assert.Equal(t, "cake", req.Search.Value)
	assert.Len(t, req.Columns, 3)

	name, desc, ok := req.SortColumn()
	assert.True(t, ok)
	assert.Equal(t, "createdat", name)
	assert.False(t, desc)
}

func TestFromRequest_QueryParameters(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/categories/datatable?draw=1&start=5&length=25", nil)

	req := FromRequest(r)
	assert.Equal(t, 1, req.Draw)
	assert.Equal(t, 5, req.Start)
	assert.Equal(t, 25, req.Length)
	assert.Empty(t, req.Search.Value)
	assert.Empty(t, req.Order)
}

func TestFromRequest_EmptyRequestFallsBackToDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/categories/datatable", nil)

	req := FromRequest(r)
	assert.Equal(t, DefaultRequest(), req)
}

func TestFromRequest_MalformedValuesFallBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/dt?draw=abc&start=-4&length=oops&order[0][column]=x&order[0][dir]=sideways", nil)

	req := FromRequest(r)
	assert.Equal(t, 0, req.Draw)
	assert.Equal(t, 0, req.Start, "negative start clamps to zero")
	assert.Equal(t, defaultLength, req.Length)

	// Malformed order column parses to index 0 with a normalized direction.
	assert.Len(t, req.Order, 1)
	assert.Equal(t, "desc", req.Order[0].Dir)
}

func TestFromRequest_NegativeLengthMeansAll(t *testing.T) {
	r := httptest.NewRequest("GET", "/dt?length=-1", nil)
	assert.Equal(t, LengthAll, FromRequest(r).Length)
}

func TestSortColumn_NoOrder(t *testing.T) {
	req := Request{Columns: []Column{{Name: "name"}}}
	_, _, ok := req.SortColumn()
	assert.False(t, ok)
}

func TestSortColumn_IndexOutOfRange(t *testing.T) {
	req := Request{
		Order:   []Order{{Column: 7, Dir: "asc"}},
		Columns: []Column{{Name: "name"}},
	}
	_, _, ok := req.SortColumn()
	assert.False(t, ok)
}

func TestSortColumn_UnnamedColumn(t *testing.T) {
	req := Request{
		Order:   []Order{{Column: 0, Dir: "desc"}},
		Columns: []Column{{Name: ""}},
	}
	_, _, ok := req.SortColumn()
	assert.False(t, ok)
}

func TestPage(t *testing.T) {
	tests := []struct {
		name           string
		start, length  int
		total          int
		wantFrom, wantTo int
	}{
		{"middle page", 10, 5, 25, 10, 15},
		{"past the end", 30, 5, 25, 25, 25},
		{"partial last page", 20, 10, 25, 20, 25},
		{"all rows", 0, LengthAll, 25, 0, 25},
		{"offset with all rows", 10, LengthAll, 25, 10, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Start: tt.start, Length: tt.length}
			from, to := req.Page(tt.total)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestNewResponse_EchoesDrawAndNormalizesNil(t *testing.T) {
	req := Request{Draw: 9}
	resp := NewResponse[string](req, 25, 2, nil)

	assert.Equal(t, 9, resp.Draw)
	assert.Equal(t, 25, resp.RecordsTotal)
	assert.Equal(t, 2, resp.RecordsFiltered)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}
