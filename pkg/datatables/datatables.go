// Package datatables implements the request/response contract used by the
// admin grid UI: offset paging, a free-text search term, one sort column
// resolved through a positional column-name table, and an opaque draw token
// echoed back with every response.
package datatables

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// LengthAll is the page-size sentinel meaning "return every row".
const LengthAll = -1

const defaultLength = 10

// Search holds the free-text search term.
type Search struct {
	Value string `json:"value"`
	Regex bool   `json:"regex"`
}

// Order is a single sort instruction: a positional column index and a direction.
type Order struct {
	Column int    `json:"column"`
	Dir    string `json:"dir"`
}

// Column describes one grid column. Name is the logical field name used to
// resolve sort instructions.
type Column struct {
	Data      string `json:"data"`
	Name      string `json:"name"`
	Orderable bool   `json:"orderable"`
}

// Request is a server-side processing request from the grid.
type Request struct {
	Draw    int      `json:"draw"`
	Start   int      `json:"start"`
	Length  int      `json:"length"`
	Search  Search   `json:"search"`
	Order   []Order  `json:"order"`
	Columns []Column `json:"columns"`
}

// DefaultRequest returns the request substituted when the caller sends
// nothing usable: first page, default page size, no search, no sort.
func DefaultRequest() Request {
	return Request{Length: defaultLength}
}

// FromRequest extracts a grid request from the form or query parameters of an
// HTTP request, using the standard parameter names (draw, start, length,
// search[value], order[0][column], order[0][dir], columns[i][name]).
// Absent or malformed parameters fall back to the defaults rather than
// failing, so a bad request degrades to an empty default query.
func FromRequest(r *http.Request) Request {
	req := DefaultRequest()

	if err := r.ParseForm(); err != nil {
		return req
	}
	values := r.Form

	req.Draw = atoiOr(values.Get("draw"), 0)
	req.Start = atoiOr(values.Get("start"), 0)
	if req.Start < 0 {
		req.Start = 0
	}

	req.Length = atoiOr(values.Get("length"), defaultLength)
	if req.Length < 0 {
		req.Length = LengthAll
	}

	req.Search.Value = values.Get("search[value]")

	if col := values.Get("order[0][column]"); col != "" {
		order := Order{
			Column: atoiOr(col, 0),
			Dir:    strings.ToLower(values.Get("order[0][dir]")),
		}
		if order.Dir != "asc" {
			order.Dir = "desc"
		}
		req.Order = []Order{order}
	}

	for i := 0; ; i++ {
		key := fmt.Sprintf("columns[%d][name]", i)
		if !values.Has(key) {
			break
		}
		req.Columns = append(req.Columns, Column{
			Data: values.Get(fmt.Sprintf("columns[%d][data]", i)),
			Name: values.Get(key),
		})
	}

	return req
}

// SortColumn resolves the first sort instruction to a lowercased logical
// column name and a descending flag. It returns ok=false when no sort is
// specified or the column index does not resolve to a named column; callers
// fall back to their default ordering in that case.
func (r Request) SortColumn() (name string, desc bool, ok bool) {
	if len(r.Order) == 0 {
		return "", false, false
	}

	order := r.Order[0]
	if order.Column < 0 || order.Column >= len(r.Columns) {
		return "", false, false
	}

	name = strings.ToLower(r.Columns[order.Column].Name)
	if name == "" {
		return "", false, false
	}

	return name, order.Dir != "asc", true
}

// Page applies the request's offset and page size to a total row count,
// returning the half-open index range [from, to).
func (r Request) Page(total int) (from, to int) {
	from = r.Start
	if from > total {
		from = total
	}

	if r.Length == LengthAll {
		return from, total
	}

	to = from + r.Length
	if to > total {
		to = total
	}
	return from, to
}

// Response is the server-side processing reply: the echoed draw token, the
// unfiltered and filtered row counts, and one page of projected rows.
type Response[T any] struct {
	Draw            int `json:"draw"`
	RecordsTotal    int `json:"recordsTotal"`
	RecordsFiltered int `json:"recordsFiltered"`
	Data            []T `json:"data"`
}

// NewResponse builds a response, normalizing nil data to an empty slice so
// the grid always receives a JSON array.
func NewResponse[T any](req Request, total, filtered int, data []T) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Draw:            req.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            data,
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
