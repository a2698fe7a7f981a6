package extract

import (
	"regexp"
	"strings"
)

const (
	minNameLen = 3

	// Age bounds from the catalogue; anything outside is a misparse.
	minAge = 15
	maxAge = 100
)

var (
	headingRe = regexp.MustCompile(`(\d{3}\s\d{2})\s+([A-Za-zÀ-ÿ]+)`)

	// Name, Address AgeYY Rank N/J amounts...
	// Age and income year are two digits each and may arrive fused ("4523").
	recordTailRe = regexp.MustCompile(`^(.*?)\s+(\d{2})\s*(\d{2})\s+(\d+)\s+([NJ])\s+(.*)$`)

	nameRe = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s\-'\.]+$`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Header and promo lines interleaved with the records.
var noiseMarkers = []string{"Namn, adress", "Å IÅ LR", "Prova", "ratsit"}

// ParseHeading recognizes a postal code heading line ("167 72 Bromma").
func ParseHeading(text string) (Heading, bool) {
	m := headingRe.FindStringSubmatch(text)
	if m == nil {
		return Heading{}, false
	}
	return Heading{PostalCode: m[1], AreaName: m[2]}, true
}

// IsNoiseLine reports whether a line is a column header or promotional
// text rather than record data.
func IsNoiseLine(text string) bool {
	for _, marker := range noiseMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// ParseRecordLine parses a single column cell as one person record.
// The heading fields of the returned record are left empty; the caller
// tags them from the column tracker.
func ParseRecordLine(text string) (*Record, bool) {
	text = spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" || IsNoiseLine(text) {
		return nil, false
	}

	comma := strings.Index(text, ",")
	if comma < 0 {
		return nil, false
	}

	name := strings.TrimSpace(text[:comma])
	rest := strings.TrimSpace(text[comma+1:])

	if len(name) < minNameLen || !nameRe.MatchString(name) {
		return nil, false
	}

	m := recordTailRe.FindStringSubmatch(rest)
	if m == nil {
		return nil, false
	}

	address := strings.TrimSpace(m[1])
	age := atoi(m[2])
	year := atoi(m[3])
	rank := atoi(m[4])
	payment := m[5]
	amounts := m[6]

	if age < minAge || age > maxAge {
		return nil, false
	}

	// Two-digit income year
	incomeYear := year + 1900
	if year < 50 {
		incomeYear = year + 2000
	}

	salary, capital := ParseAmounts(amounts)

	return &Record{
		Name:           name,
		Address:        address,
		Age:            age,
		IncomeYear:     incomeYear,
		SalaryRank:     rank,
		PaymentRemarks: payment == "J",
		Salary:         salary,
		Capital:        capital,
	}, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
