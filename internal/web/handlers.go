package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nordkart/ratsit-atlas/internal/store"
)

const topEarnersLimit = 20

const searchResultsLimit = 100

// AreaMarker is the JSON payload behind one map marker.
type AreaMarker struct {
	PostalCode  string  `json:"postal_code"`
	AreaName    string  `json:"area_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	PersonCount int     `json:"person_count"`
	AvgSalary   int64   `json:"avg_salary"`
	AvgCapital  int64   `json:"avg_capital"`
	AvgAge      int     `json:"avg_age"`
	Color       string  `json:"color"`
	Located     bool    `json:"located"`
}

// DistributionBucket is one bar of the salary distribution chart.
type DistributionBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Salary bucket boundaries in SEK.
var distributionRanges = []struct {
	min   int64
	max   int64
	label string
}{
	{0, 300_000, "Under 300k"},
	{300_000, 500_000, "300k-500k"},
	{500_000, 750_000, "500k-750k"},
	{750_000, 1_000_000, "750k-1M"},
	{1_000_000, 0, "Over 1M"}, // max 0 means unbounded
}

type indexData struct {
	Rankings     []store.AreaRanking
	TopEarners   []store.Person
	CurrentSort  string
	CurrentOrder string
	RecordCount  int
}

type areaData struct {
	Stats        *store.AreaStats
	Persons      []store.Person
	CurrentSort  string
	CurrentOrder string
}

type searchData struct {
	Query   string
	Results []store.Person
}

// handleIndex renders the main dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sortBy, order := sortParams(r)

	rankings, err := s.store.AreaRankings()
	if err != nil {
		s.serverError(w, "load area rankings", err)
		return
	}

	topEarners, err := s.store.TopEarners(topEarnersLimit, sortBy, order)
	if err != nil {
		s.serverError(w, "load top earners", err)
		return
	}

	count, err := s.store.Count()
	if err != nil {
		s.serverError(w, "count records", err)
		return
	}

	s.render(w, "index.html", indexData{
		Rankings:     rankings,
		TopEarners:   topEarners,
		CurrentSort:  sortBy,
		CurrentOrder: order,
		RecordCount:  count,
	})
}

// handleAreaDetail renders the detail page for one postal code.
func (s *Server) handleAreaDetail(w http.ResponseWriter, r *http.Request) {
	postalCode := r.PathValue("postal")
	sortBy, order := sortParams(r)

	stats, err := s.store.AreaStats(postalCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Area not found", http.StatusNotFound)
			return
		}
		s.serverError(w, "load area stats", err)
		return
	}

	persons, err := s.store.PersonsByArea(postalCode, sortBy, order)
	if err != nil {
		s.serverError(w, "load persons", err)
		return
	}

	s.render(w, "area.html", areaData{
		Stats:        stats,
		Persons:      persons,
		CurrentSort:  sortBy,
		CurrentOrder: order,
	})
}

// handleSearch renders name/address substring search results.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var results []store.Person
	if query != "" {
		var err error
		results, err = s.store.SearchPersons(query, searchResultsLimit)
		if err != nil {
			s.serverError(w, "search persons", err)
			return
		}
	}

	s.render(w, "search.html", searchData{
		Query:   query,
		Results: results,
	})
}

// handleAPIAreas returns the map marker data as JSON.
func (s *Server) handleAPIAreas(w http.ResponseWriter, _ *http.Request) {
	rankings, err := s.store.AreaRankings()
	if err != nil {
		s.serverError(w, "load area rankings", err)
		return
	}

	markers := make([]AreaMarker, 0, len(rankings))
	for _, r := range rankings {
		coord, located := s.coords.Lookup(r.PostalCode)
		markers = append(markers, AreaMarker{
			PostalCode:  r.PostalCode,
			AreaName:    r.AreaName,
			Lat:         coord.Lat,
			Lng:         coord.Lng,
			PersonCount: r.PersonCount,
			AvgSalary:   r.AvgSalary,
			AvgCapital:  r.AvgCapital,
			AvgAge:      r.AvgAge,
			Color:       MarkerColor(r.AvgSalary),
			Located:     located,
		})
	}

	s.writeJSON(w, markers)
}

// handleAPISalaryDistribution returns the bucketed salary distribution.
func (s *Server) handleAPISalaryDistribution(w http.ResponseWriter, _ *http.Request) {
	salaries, err := s.store.Salaries()
	if err != nil {
		s.serverError(w, "load salaries", err)
		return
	}

	buckets := make([]DistributionBucket, 0, len(distributionRanges))
	for _, rng := range distributionRanges {
		count := 0
		for _, salary := range salaries {
			if salary >= rng.min && (rng.max == 0 || salary < rng.max) {
				count++
			}
		}
		buckets = append(buckets, DistributionBucket{Range: rng.label, Count: count})
	}

	s.writeJSON(w, buckets)
}

// handleHealthz reports liveness and the stored record count.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	count, err := s.store.Count()
	if err != nil {
		s.serverError(w, "count records", err)
		return
	}
	s.writeJSON(w, map[string]any{
		"status":  "ok",
		"records": count,
	})
}

// sortParams reads the sort/order query parameters with the dashboard
// defaults.
func sortParams(r *http.Request) (sortBy, order string) {
	sortBy = r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "salary"
	}
	order = r.URL.Query().Get("order")
	if order == "" {
		order = "desc"
	}
	return sortBy, order
}

// render executes a template into a buffer first, so a render error can
// still produce a 500 instead of a truncated page.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("json encode failed", zap.Error(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("handler error", zap.String("op", op), zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
