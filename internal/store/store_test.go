package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordkart/ratsit-atlas/internal/extract"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testRecords() []extract.Record {
	return []extract.Record{
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
			Age: 44, IncomeYear: 2023, SalaryRank: 1, Salary: 300_000, PaymentRemarks: true,
		},
		{
			Name: "Lind Erik", Address: "Storgatan 12", PostalCode: "114 25", AreaName: "Stockholm",
			Age: 67, IncomeYear: 2023, SalaryRank: 2, Salary: 0, Capital: 1_250_000,
		},
	}
}

func TestStore_ReplaceAllAndCount(t *testing.T) {
	st := testStore(t)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, st.ReplaceAll(testRecords()))

	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// A second import replaces, never appends
	require.NoError(t, st.ReplaceAll(testRecords()[:2]))

	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_AreaRankings(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	rankings, err := st.AreaRankings()
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	// Highest average salary first
	assert.Equal(t, "167 71", rankings[0].PostalCode)
	assert.Equal(t, "Bromma", rankings[0].AreaName)
	assert.Equal(t, 2, rankings[0].PersonCount)
	assert.Equal(t, int64(850_000), rankings[0].AvgSalary)

	assert.Equal(t, "114 25", rankings[1].PostalCode)
	assert.Equal(t, int64(150_000), rankings[1].AvgSalary)
}

func TestStore_PersonsByArea(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	tests := []struct {
		name      string
		sortBy    string
		order     string
		firstName string
	}{
		{"salary descending by default", "salary", "desc", "Berg Anna"},
		{"salary ascending", "salary", "asc", "Nilsson Eva"},
		{"by age", "age", "desc", "Nilsson Eva"},
		{"by name", "name", "asc", "Berg Anna"},
		{"unknown sort key falls back to salary", "id; DROP TABLE persons", "desc", "Berg Anna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persons, err := st.PersonsByArea("167 71", tt.sortBy, tt.order)
			require.NoError(t, err)
			require.Len(t, persons, 2)
			assert.Equal(t, tt.firstName, persons[0].Name)
		})
	}

	persons, err := st.PersonsByArea("999 99", "salary", "desc")
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestStore_TopEarners(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	persons, err := st.TopEarners(2, "salary", "desc")
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Berg Anna", persons[0].Name)
	assert.Equal(t, "Nilsson Eva", persons[1].Name)

	persons, err = st.TopEarners(10, "capital", "desc")
	require.NoError(t, err)
	require.Len(t, persons, 4)
	assert.Equal(t, "Lind Erik", persons[0].Name)
}

func TestStore_SearchPersons(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by name substring", "Nilsson", []string{"Nilsson Eva"}},
		{"by address substring", "gatan", []string{"Berg Anna", "Lind Erik"}},
		{"case matters only for results order", "berg", []string{"Berg Anna"}},
		{"wildcards are literal", "%", nil},
		{"no match", "Qvist", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persons, err := st.SearchPersons(tt.query, 10)
			require.NoError(t, err)

			var names []string
			for _, p := range persons {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestStore_Salaries(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	salaries, err := st.Salaries()
	require.NoError(t, err)

	// Zero salaries are excluded; order is highest first
	assert.Equal(t, []int64{1_200_000, 500_000, 300_000}, salaries)
}

func TestStore_AreaStats(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.ReplaceAll(testRecords()))

	stats, err := st.AreaStats("167 71")
	require.NoError(t, err)
	assert.Equal(t, "Bromma", stats.AreaName)
	assert.Equal(t, 2, stats.TotalPeople)
	assert.Equal(t, int64(850_000), stats.AvgSalary)
	assert.Equal(t, int64(1_200_000), stats.MaxSalary)
	assert.Equal(t, int64(500_000), stats.MinSalary)
	assert.Equal(t, int64(187_948), stats.AvgCapital)

	_, err = st.AreaStats("999 99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSortColumnWhitelist(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"salary", "salary"},
		{"rank", "salary_rank"},
		{"NAME", "name"},
		{"id; DROP TABLE persons", "salary"},
		{"", "salary"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sortColumn(tt.key), "key: %q", tt.key)
	}
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", sortOrder("asc"))
	assert.Equal(t, "ASC", sortOrder("ASC"))
	assert.Equal(t, "DESC", sortOrder("desc"))
	assert.Equal(t, "DESC", sortOrder("anything"))
}
