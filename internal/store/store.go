// Package store persists parsed Ratsit records in SQLite and answers
// the aggregate queries behind the dashboard.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nordkart/ratsit-atlas/internal/extract"
)

// Store manages the persons database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Person is one stored person row.
type Person struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code"`
	AreaName       string `json:"area_name"`
	Age            int    `json:"age"`
	IncomeYear     int    `json:"income_year"`
	SalaryRank     int    `json:"salary_rank"`
	PaymentRemarks bool   `json:"payment_remarks"`
	Salary         int64  `json:"salary"`
	Capital        int64  `json:"capital"`
}

// AreaRanking is one row of the per-area aggregate ranking.
type AreaRanking struct {
	PostalCode  string `json:"postal_code"`
	AreaName    string `json:"area_name"`
	PersonCount int    `json:"person_count"`
	AvgSalary   int64  `json:"avg_salary"`
	AvgCapital  int64  `json:"avg_capital"`
	AvgAge      int    `json:"avg_age"`
}

// AreaStats are the aggregate statistics for a single area.
type AreaStats struct {
	PostalCode  string `json:"postal_code"`
	AreaName    string `json:"area_name"`
	TotalPeople int    `json:"total_people"`
	AvgSalary   int64  `json:"avg_salary"`
	MaxSalary   int64  `json:"max_salary"`
	MinSalary   int64  `json:"min_salary"`
	AvgCapital  int64  `json:"avg_capital"`
	AvgAge      int    `json:"avg_age"`
}

// Sort columns accepted by the person queries. Query parameters are
// mapped through this whitelist before reaching SQL.
var sortColumns = map[string]string{
	"salary":  "salary",
	"capital": "capital",
	"age":     "age",
	"rank":    "salary_rank",
	"name":    "name",
}

// NewStore creates or opens the persons database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT,
		postal_code TEXT,
		area_name TEXT,
		age INTEGER,
		income_year INTEGER,
		salary_rank INTEGER,
		payment_remarks INTEGER NOT NULL DEFAULT 0,
		salary INTEGER,
		capital INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_postal_code ON persons(postal_code);
	CREATE INDEX IF NOT EXISTS idx_area_name ON persons(area_name);
	CREATE INDEX IF NOT EXISTS idx_salary ON persons(salary);
	CREATE INDEX IF NOT EXISTS idx_income_year ON persons(income_year);

	CREATE VIEW IF NOT EXISTS area_stats AS
	SELECT
		postal_code,
		area_name,
		COUNT(*) as person_count,
		AVG(salary) as avg_salary,
		MIN(salary) as min_salary,
		MAX(salary) as max_salary,
		AVG(capital) as avg_capital,
		AVG(age) as avg_age
	FROM persons
	WHERE salary > 0
	GROUP BY postal_code, area_name;
	`

	_, err := s.db.Exec(schema)
	return err
}

// ReplaceAll clears the persons table and inserts the given records in
// one transaction. The catalogue is re-imported wholesale on every
// ingest run.
func (s *Store) ReplaceAll(records []extract.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM persons`); err != nil {
		return fmt.Errorf("failed to clear persons: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO persons
		(name, address, postal_code, area_name, age, income_year,
		 salary_rank, payment_remarks, salary, capital)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Name, rec.Address, rec.PostalCode, rec.AreaName,
			rec.Age, rec.IncomeYear, rec.SalaryRank, rec.PaymentRemarks,
			rec.Salary, rec.Capital); err != nil {
			return fmt.Errorf("failed to insert record for %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Count returns the number of stored persons.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count persons: %w", err)
	}
	return count, nil
}

// AreaRankings returns areas ranked by average salary.
func (s *Store) AreaRankings() ([]AreaRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT
			postal_code,
			area_name,
			COUNT(*) as person_count,
			CAST(AVG(salary) AS INTEGER) as avg_salary,
			CAST(AVG(capital) AS INTEGER) as avg_capital,
			CAST(AVG(age) AS INTEGER) as avg_age
		FROM persons
		GROUP BY postal_code, area_name
		ORDER BY avg_salary DESC, person_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query area rankings: %w", err)
	}
	defer rows.Close()

	var rankings []AreaRanking
	for rows.Next() {
		var r AreaRanking
		if err := rows.Scan(&r.PostalCode, &r.AreaName, &r.PersonCount,
			&r.AvgSalary, &r.AvgCapital, &r.AvgAge); err != nil {
			return nil, fmt.Errorf("failed to scan area ranking: %w", err)
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// PersonsByArea returns all persons for a postal code, sorted by the
// given column and order.
func (s *Store) PersonsByArea(postalCode, sortBy, order string) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT id, name, address, postal_code, area_name, age, income_year,
			salary_rank, payment_remarks, salary, capital
		FROM persons
		WHERE postal_code = ?
		ORDER BY %s %s
	`, sortColumn(sortBy), sortOrder(order))

	rows, err := s.db.Query(query, postalCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons by area: %w", err)
	}
	defer rows.Close()

	return scanPersons(rows)
}

// TopEarners returns the highest earners across all areas.
func (s *Store) TopEarners(limit int, sortBy, order string) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT id, name, address, postal_code, area_name, age, income_year,
			salary_rank, payment_remarks, salary, capital
		FROM persons
		ORDER BY %s %s, salary_rank ASC
		LIMIT ?
	`, sortColumn(sortBy), sortOrder(order))

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top earners: %w", err)
	}
	defer rows.Close()

	return scanPersons(rows)
}

// SearchPersons finds persons whose name or address contains the query
// substring, highest salary first.
func (s *Store) SearchPersons(q string, limit int) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.Query(`
		SELECT id, name, address, postal_code, area_name, age, income_year,
			salary_rank, payment_remarks, salary, capital
		FROM persons
		WHERE name LIKE ? ESCAPE '\' OR address LIKE ? ESCAPE '\'
		ORDER BY salary DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	defer rows.Close()

	return scanPersons(rows)
}

// Salaries returns all positive salary values, for distribution
// bucketing.
func (s *Store) Salaries() ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT salary FROM persons WHERE salary > 0 ORDER BY salary DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query salaries: %w", err)
	}
	defer rows.Close()

	var salaries []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		salaries = append(salaries, v)
	}
	return salaries, rows.Err()
}

// AreaStats returns the aggregate statistics for one postal code, or
// sql.ErrNoRows wrapped if the area has no persons.
func (s *Store) AreaStats(postalCode string) (*AreaStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st AreaStats
	err := s.db.QueryRow(`
		SELECT
			postal_code,
			area_name,
			COUNT(*),
			CAST(AVG(salary) AS INTEGER),
			MAX(salary),
			MIN(salary),
			CAST(AVG(capital) AS INTEGER),
			CAST(AVG(age) AS INTEGER)
		FROM persons
		WHERE postal_code = ?
		GROUP BY postal_code, area_name
	`, postalCode).Scan(&st.PostalCode, &st.AreaName, &st.TotalPeople,
		&st.AvgSalary, &st.MaxSalary, &st.MinSalary, &st.AvgCapital, &st.AvgAge)
	if err != nil {
		return nil, fmt.Errorf("failed to query area stats: %w", err)
	}
	return &st, nil
}

func scanPersons(rows *sql.Rows) ([]Person, error) {
	var persons []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.PostalCode, &p.AreaName,
			&p.Age, &p.IncomeYear, &p.SalaryRank, &p.PaymentRemarks,
			&p.Salary, &p.Capital); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// sortColumn maps a user-facing sort key to a column name. Unknown keys
// fall back to salary.
func sortColumn(key string) string {
	if col, ok := sortColumns[strings.ToLower(key)]; ok {
		return col
	}
	return "salary"
}

// sortOrder normalizes the sort direction. Anything but "asc" sorts
// descending.
func sortOrder(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

// escapeLike escapes LIKE wildcards in a user query.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
