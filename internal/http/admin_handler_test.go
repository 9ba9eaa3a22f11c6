package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/Clark-Hu/course-conditions/internal/repository"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		raw  string
		want repository.PageParams
	}{
		{"", repository.PageParams{Page: 1, Limit: 50}},
		{"page=3&limit=20", repository.PageParams{Page: 3, Limit: 20}},
		{"page=0&limit=0", repository.PageParams{Page: 1, Limit: 1}},
		{"page=-4&limit=9999", repository.PageParams{Page: 1, Limit: 500}},
		{"page=abc&limit=xyz", repository.PageParams{Page: 1, Limit: 50}},
		{"page=%202%20", repository.PageParams{Page: 2, Limit: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			if got := parsePageParams(values); got != tt.want {
				t.Fatalf("parsePageParams(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestHandleAdminTables(t *testing.T) {
	srv := buildTestServer(t)

	if code := submit(t, srv, 1, `{"user_id":"u","ratings":{"difficulty":2,"quality":3},"conditions_rating":4}`); code != http.StatusCreated {
		t.Fatalf("submit status = %d", code)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/admin/tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[tablesResponse](t, rec)
	want := map[string]int64{"rating_dimensions": 2, "course_ratings": 2, "course_conditions": 1}
	if len(resp.Tables) != len(want) {
		t.Fatalf("tables = %+v", resp.Tables)
	}
	for _, table := range resp.Tables {
		if want[table.TableName] != table.RowCount {
			t.Fatalf("%s rows = %d, want %d", table.TableName, table.RowCount, want[table.TableName])
		}
	}
}

func TestHandleAdminRatingsPagination(t *testing.T) {
	srv := buildTestServer(t)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"user_id":"user-%d","ratings":{"difficulty":%d}}`, i, 1+i%5)
		if code := submit(t, srv, 300, body); code != http.StatusCreated {
			t.Fatalf("submit status = %d", code)
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/admin/course-ratings?page=2&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[paginatedResponse[ratingRow]](t, rec)
	if resp.Page != 2 || resp.Limit != 2 || resp.TotalCount != 5 || resp.TotalPages != 3 {
		t.Fatalf("pagination = %+v", resp)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("rows = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].DimensionName != "difficulty" || resp.Data[0].CourseID != 300 {
		t.Fatalf("row = %+v", resp.Data[0])
	}
}

func TestHandleAdminDimensionsAndConditions(t *testing.T) {
	srv := buildTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/admin/rating-dimensions?limit=abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dimensions status = %d, want 200", rec.Code)
	}
	dims := decodeBody[paginatedResponse[map[string]any]](t, rec)
	if dims.Limit != 50 || dims.TotalCount != 2 || dims.TotalPages != 1 || len(dims.Data) != 2 {
		t.Fatalf("dimensions page = %+v", dims)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/admin/course-conditions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("conditions status = %d, want 200", rec.Code)
	}
	conds := decodeBody[paginatedResponse[conditionRow]](t, rec)
	if conds.TotalCount != 0 || conds.TotalPages != 0 || conds.Data == nil {
		t.Fatalf("conditions page = %+v", conds)
	}
}

func FuzzParsePageParams(f *testing.F) {
	for _, seed := range []string{"page=1&limit=50", "page=-1", "limit=100000", "page=abc", ""} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		params := parsePageParams(values)
		if params.Page < 1 || params.Limit < 1 || params.Limit > repository.MaxPageLimit {
			t.Fatalf("parsePageParams(%q) = %+v out of bounds", raw, params)
		}
	})
}
