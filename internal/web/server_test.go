package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordkart/ratsit-atlas/internal/config"
	"github.com/nordkart/ratsit-atlas/internal/extract"
	"github.com/nordkart/ratsit-atlas/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ReplaceAll([]extract.Record{
		{
			Name: "Berg Anna", Address: "Gatan 3", PostalCode: "167 71", AreaName: "Bromma",
			Age: 45, IncomeYear: 2023, SalaryRank: 1, Salary: 1_200_000, Capital: 275_896,
		},
		{
			Name: "Nilsson Eva", Address: "Vägen 2", PostalCode: "167 71", AreaName: "Bromma",
			Age: 50, IncomeYear: 2023, SalaryRank: 2, Salary: 500_000, Capital: 100_000,
		},
		{
			Name: "Pärsson Olle", Address: "Gränd 8", PostalCode: "114 25", AreaName: "Stockholm",
			Age: 44, IncomeYear: 2023, SalaryRank: 1, Salary: 300_000,
		},
	}))

	cfg := config.DefaultConfig()
	srv, err := NewServer(cfg, st, nil)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func TestServer_Index(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Bromma")
	assert.Contains(t, body, "Berg Anna")
	assert.Contains(t, body, "1 200 000")
}

func TestServer_AreaDetail(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/area/167%2071")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Bromma")
	assert.Contains(t, body, "Nilsson Eva")
	assert.NotContains(t, body, "Pärsson Olle")

	// The stats panel and the full page must render, not cut off mid-panel
	assert.Contains(t, body, "<b>2</b> people")
	assert.Contains(t, body, "</html>")
}

func TestServer_RenderErrorReturns500(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.render(rec, "missing.html", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_AreaDetail_NotFound(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/area/999%2099")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Search(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/search?q=Nilsson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nilsson Eva")

	rec = get(t, srv, "/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Nilsson Eva")
}

func TestServer_APIAreas(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/api/areas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var markers []AreaMarker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markers))
	require.Len(t, markers, 2)

	// Rankings order: highest average salary first
	assert.Equal(t, "167 71", markers[0].PostalCode)
	assert.Equal(t, int64(850_000), markers[0].AvgSalary)
	assert.Equal(t, "orange", markers[0].Color)
	assert.True(t, markers[0].Located)

	assert.Equal(t, "114 25", markers[1].PostalCode)
	assert.Equal(t, "green", markers[1].Color)
}

func TestServer_APISalaryDistribution(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/api/salary-distribution")
	require.Equal(t, http.StatusOK, rec.Code)

	var buckets []DistributionBucket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buckets))
	require.Len(t, buckets, 5)

	counts := map[string]int{}
	for _, b := range buckets {
		counts[b.Range] = b.Count
	}
	assert.Equal(t, 1, counts["300k-500k"])
	assert.Equal(t, 1, counts["500k-750k"])
	assert.Equal(t, 1, counts["Over 1M"])
	assert.Equal(t, 0, counts["Under 300k"])
}

func TestServer_Healthz(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(3), resp["records"])
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormatSEK(t *testing.T) {
	tests := []struct {
		v    int64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1 000"},
		{295400, "295 400"},
		{1055700, "1 055 700"},
		{-15000, "-15 000"},
	}

	for _, tt := range tests {
		if got := formatSEK(tt.v); got != tt.want {
			t.Errorf("formatSEK(%d) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatSEK_Grouping(t *testing.T) {
	// Every group after the first must be three digits
	for _, v := range []int64{1, 12, 123, 1234, 12345, 123456, 1234567} {
		groups := strings.Split(formatSEK(v), " ")
		for i, g := range groups {
			if i > 0 && len(g) != 3 {
				t.Errorf("formatSEK(%d) = %q: group %d has %d digits", v, formatSEK(v), i, len(g))
			}
		}
	}
}
