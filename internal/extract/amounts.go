package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount sanity bounds, in SEK. Values outside these are parsing
// artifacts from the multi-column layout and are zeroed.
const (
	maxSalary  = 50_000_000
	maxCapital = 10_000_000
)

var (
	trailingNameRe = regexp.MustCompile(`[A-Za-zÀ-ÿ]+,.*$`)
	numberRunRe    = regexp.MustCompile(`-?\d+(?:\s+\d+)*`)
)

// ParseAmounts extracts the salary and capital amounts from the tail of
// a record. Amounts use the Swedish space-grouped format ("1 055 700");
// capital may be negative. When the two amounts arrive as one
// undelimited run of digit groups, candidate split points are scored by
// salary plausibility and valid grouping.
func ParseAmounts(text string) (salary, capital int64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0
	}

	// Drop any following record's name that bled into this cell
	text = strings.TrimSpace(trailingNameRe.ReplaceAllString(text, ""))

	runs := numberRunRe.FindAllString(text, -1)
	if len(runs) == 0 {
		return 0, 0
	}

	switch {
	case len(runs) >= 2:
		if strings.TrimSpace(runs[0]) == "0" {
			// Zero salary; the remaining groups form the capital amount
			salary = 0
			capital = swedishNumber(strings.Join(runs[1:], " "))
		} else {
			salary = swedishNumber(runs[0])
			capital = swedishNumber(runs[1])
		}
	default:
		salary, capital = splitSingleRun(runs[0])
	}

	if salary > maxSalary {
		salary = 0
	}
	if capital > maxCapital || capital < -maxCapital {
		capital = 0
	}
	return salary, capital
}

// splitSingleRun handles the case where salary and capital were
// extracted as one run of digit groups, e.g. "630 000 275 896".
func splitSingleRun(run string) (int64, int64) {
	parts := strings.Fields(run)
	if len(parts) < 2 {
		return swedishNumber(run), 0
	}

	// Capital is often negative; a minus sign marks the split directly.
	if idx := strings.Index(run, "-"); idx > 0 {
		return swedishNumber(strings.TrimSpace(run[:idx])), swedishNumber(strings.TrimSpace(run[idx:]))
	}

	type split struct {
		salary  int64
		capital int64
		score   float64
	}
	var best *split

	for point := 1; point <= 4 && point < len(parts); point++ {
		salaryPart := strings.Join(parts[:point], " ")
		capitalPart := strings.Join(parts[point:], " ")

		if !validGrouping(salaryPart) || !validGrouping(capitalPart) {
			continue
		}

		salaryVal := swedishNumber(salaryPart)
		capitalVal := swedishNumber(capitalPart)

		if salaryVal != 0 && (salaryVal < 10_000 || salaryVal > 5_000_000) {
			continue
		}
		if capitalVal > maxCapital || capitalVal < -maxCapital {
			continue
		}

		score := salaryScore(salaryVal)
		if best == nil || score > best.score {
			best = &split{salary: salaryVal, capital: capitalVal, score: score}
		}
	}

	if best != nil {
		return best.salary, best.capital
	}

	// No plausible split; fall back to fixed grouping rules
	switch {
	case len(parts) == 3:
		return swedishNumber(strings.Join(parts[:2], " ")), swedishNumber(parts[2])
	case len(parts) == 4:
		return swedishNumber(strings.Join(parts[:2], " ")), swedishNumber(strings.Join(parts[2:], " "))
	case len(parts) >= 5:
		return swedishNumber(strings.Join(parts[:3], " ")), swedishNumber(strings.Join(parts[3:], " "))
	default:
		return swedishNumber(parts[0]), swedishNumber(strings.Join(parts[1:], " "))
	}
}

// salaryScore ranks a candidate salary by how typical the value is.
// Zero is legitimate (students, unemployed); 100k-800k SEK is the
// common range in the catalogue.
func salaryScore(v int64) float64 {
	switch {
	case v == 0:
		return 0.95
	case v >= 100_000 && v <= 800_000:
		return 1.0
	case v >= 15_000 && v < 50_000:
		return 0.9
	case v >= 50_000 && v < 100_000:
		return 0.8
	case v > 800_000 && v <= 2_000_000:
		return 0.6
	case v < 15_000:
		return 0.3
	default: // above 2M, rare
		return 0.2
	}
}

// validGrouping reports whether the digit groups form a plausible
// space-grouped Swedish number. A trailing 1-2 digit group after two or
// more groups ("20 800 5") marks a bad split.
func validGrouping(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	parts := strings.Fields(s)
	if len(parts) == 1 {
		return true
	}

	last := strings.TrimPrefix(parts[len(parts)-1], "-")
	if len(last) <= 2 && len(parts) >= 3 {
		return false
	}
	return true
}

// swedishNumber converts a space-grouped number string to an integer
// amount in SEK.
func swedishNumber(s string) int64 {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" || clean == "0" {
		return 0
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}
	return d.IntPart()
}
