// Package layout reconstructs visual lines and columns from positioned
// PDF text tokens. The catalogue pages print three vertical columns of
// records; the band split mirrors that layout and is not a general
// purpose table detector.
package layout

import (
	"sort"
	"strings"

	"github.com/nordkart/ratsit-atlas/internal/pdfdoc"
)

const (
	// DefaultXTolerance is the horizontal gap, in points, above which two
	// tokens on the same line are treated as separate words.
	DefaultXTolerance = 3.0

	// DefaultYTolerance is the vertical distance, in points, within which
	// two tokens are considered part of the same line.
	DefaultYTolerance = 3.0
)

// Word is a run of adjacent tokens on one visual line.
type Word struct {
	Text string
	X0   float64
	X1   float64
	Y    float64
}

// Line is one visual row of a page, top to bottom.
type Line struct {
	Text  string
	Words []Word
	Y     float64
}

// Organizer groups positioned tokens into lines and column bands.
type Organizer struct {
	xTolerance float64
	yTolerance float64
}

// NewOrganizer creates an organizer with default tolerances.
func NewOrganizer() *Organizer {
	return &Organizer{
		xTolerance: DefaultXTolerance,
		yTolerance: DefaultYTolerance,
	}
}

// SetTolerances overrides the grouping tolerances.
func (o *Organizer) SetTolerances(xTol, yTol float64) {
	o.xTolerance = xTol
	o.yTolerance = yTol
}

// Lines groups tokens into visual lines, ordered top to bottom, with
// words ordered left to right within each line.
func (o *Organizer) Lines(tokens []pdfdoc.Token) []Line {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]pdfdoc.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		// PDF coordinates: Y increases upward, so larger Y comes first
		if diff := sorted[i].Y - sorted[j].Y; diff > o.yTolerance || diff < -o.yTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	var current []pdfdoc.Token
	currentY := sorted[0].Y

	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, o.buildLine(current))
		current = nil
	}

	for _, tok := range sorted {
		if diff := tok.Y - currentY; diff > o.yTolerance || diff < -o.yTolerance {
			flush()
			currentY = tok.Y
		}
		current = append(current, tok)
	}
	flush()

	return lines
}

// buildLine merges a line's tokens into words and assembles its text.
func (o *Organizer) buildLine(tokens []pdfdoc.Token) Line {
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].X < tokens[j].X
	})

	var words []Word
	var text strings.Builder
	var wordText strings.Builder
	wordX0 := tokens[0].X
	lastEnd := tokens[0].X

	flushWord := func(end float64) {
		if wordText.Len() == 0 {
			return
		}
		words = append(words, Word{
			Text: wordText.String(),
			X0:   wordX0,
			X1:   end,
			Y:    tokens[0].Y,
		})
		wordText.Reset()
	}

	for i, tok := range tokens {
		if i > 0 {
			gap := tok.X - lastEnd
			if gap > o.xTolerance {
				flushWord(lastEnd)
				wordX0 = tok.X
				text.WriteString(" ")
			}
		}
		wordText.WriteString(tok.Text)
		text.WriteString(tok.Text)
		end := tok.X + tok.W
		if end < tok.X {
			end = tok.X
		}
		lastEnd = end
	}
	flushWord(lastEnd)

	return Line{
		Text:  text.String(),
		Words: words,
		Y:     tokens[0].Y,
	}
}

// Bands splits a page's lines into n vertical column bands of equal
// width across the page's horizontal extent. The result holds, per
// band, the lines rebuilt from only that band's words, ordered top to
// bottom. Bands without any words are returned empty. With n <= 1 the
// input lines are returned as a single band.
func (o *Organizer) Bands(lines []Line, n int) [][]Line {
	if n <= 1 {
		return [][]Line{lines}
	}
	if len(lines) == 0 {
		return make([][]Line, n)
	}

	minX, maxX := lines[0].Words[0].X0, lines[0].Words[0].X1
	for _, line := range lines {
		for _, w := range line.Words {
			if w.X0 < minX {
				minX = w.X0
			}
			if w.X1 > maxX {
				maxX = w.X1
			}
		}
	}

	width := (maxX - minX) / float64(n)
	if width <= 0 {
		return [][]Line{lines}
	}

	bands := make([][]Line, n)
	for _, line := range lines {
		cells := make([][]Word, n)
		for _, w := range line.Words {
			idx := int((w.X0 - minX) / width)
			if idx >= n {
				idx = n - 1
			}
			cells[idx] = append(cells[idx], w)
		}
		for i, cell := range cells {
			if len(cell) == 0 {
				continue
			}
			bands[i] = append(bands[i], joinWords(cell))
		}
	}

	return bands
}

// joinWords rebuilds a line from a subset of its words.
func joinWords(words []Word) Line {
	var text strings.Builder
	for i, w := range words {
		if i > 0 {
			text.WriteString(" ")
		}
		text.WriteString(w.Text)
	}
	return Line{
		Text:  text.String(),
		Words: words,
		Y:     words[0].Y,
	}
}
