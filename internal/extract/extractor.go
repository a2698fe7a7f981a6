package extract

import (
	"github.com/nordkart/ratsit-atlas/internal/layout"
	"github.com/nordkart/ratsit-atlas/internal/pdfdoc"
	"go.uber.org/zap"
)

// DefaultColumns is the number of vertical record columns on a
// catalogue page.
const DefaultColumns = 3

// Extractor turns positioned PDF text into Ratsit records.
type Extractor struct {
	organizer *layout.Organizer
	columns   int
	logger    *zap.Logger
}

// NewExtractor creates an extractor for the catalogue's column layout.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		organizer: layout.NewOrganizer(),
		columns:   DefaultColumns,
		logger:    logger,
	}
}

// SetColumns overrides the expected number of columns per page.
func (e *Extractor) SetColumns(n int) {
	if n > 0 {
		e.columns = n
	}
}

// ExtractDocument parses every page of a document and returns the
// records, tagged with the postal heading in effect where they appear.
// The heading tracker runs across page boundaries.
func (e *Extractor) ExtractDocument(doc *pdfdoc.Document) []Record {
	tracker := NewTracker()
	var records []Record

	for _, page := range doc.Pages {
		pageRecords := e.extractPage(page, tracker)
		e.logger.Debug("extracted page",
			zap.String("file", doc.Path),
			zap.Int("page", page.Number),
			zap.Int("records", len(pageRecords)))
		records = append(records, pageRecords...)
	}

	return records
}

// extractPage parses one page. The column band split is tried first;
// when it yields nothing (a single-column page, or a page where the
// split cuts through every record) the page is re-parsed as one column,
// which is the naive global-assignment behavior.
func (e *Extractor) extractPage(page pdfdoc.PageTokens, tracker *Tracker) []Record {
	lines := e.organizer.Lines(page.Tokens)
	if len(lines) == 0 {
		return nil
	}

	snapshot := tracker.Snapshot()

	bands := e.organizer.Bands(lines, e.columns)
	records := e.extractColumns(bands, tracker)
	if len(records) > 0 || e.columns <= 1 {
		return records
	}

	tracker.Restore(snapshot)
	return e.extractColumns([][]layout.Line{lines}, tracker)
}

// extractColumns walks the column bands in column-major order,
// observing headings and tagging records with the current one.
func (e *Extractor) extractColumns(bands [][]layout.Line, tracker *Tracker) []Record {
	var records []Record

	for _, band := range bands {
		for _, line := range band {
			if IsNoiseLine(line.Text) {
				continue
			}

			rec, ok := ParseRecordLine(line.Text)
			if !ok {
				// Record lines always carry a comma-separated name, so a
				// postal-code-shaped street address cannot shadow a heading.
				if heading, ok := ParseHeading(line.Text); ok {
					tracker.Observe(heading)
				}
				continue
			}

			current := tracker.Current()
			if current.IsZero() {
				// No heading seen yet for this record
				continue
			}
			rec.PostalCode = current.PostalCode
			rec.AreaName = current.AreaName
			records = append(records, *rec)
		}
	}

	return records
}
