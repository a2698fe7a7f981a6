// Package ingest walks a directory of catalogue PDFs, extracts their
// records and replaces the database contents with the result.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nordkart/ratsit-atlas/internal/extract"
	"github.com/nordkart/ratsit-atlas/internal/pdfdoc"
	"github.com/nordkart/ratsit-atlas/internal/store"
)

// DefaultWorkers bounds the number of PDFs parsed concurrently.
const DefaultWorkers = 4

// Ingester parses a directory of PDF files into the store.
type Ingester struct {
	reader    *pdfdoc.Reader
	scanner   *pdfdoc.Scanner
	extractor *extract.Extractor
	store     *store.Store
	logger    *zap.Logger
	workers   int
}

// Summary reports the outcome of one ingest run.
type Summary struct {
	FilesFound        int
	FilesParsed       int
	FilesFailed       int
	Records           int
	RecordsWithSalary int // records with salary > 0
}

// New creates an ingester.
func New(maxFileSize int64, st *store.Store, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		reader:    pdfdoc.NewReader(maxFileSize),
		scanner:   pdfdoc.NewScanner(maxFileSize),
		extractor: extract.NewExtractor(logger),
		store:     st,
		logger:    logger,
		workers:   DefaultWorkers,
	}
}

// SetWorkers overrides the parse concurrency.
func (i *Ingester) SetWorkers(n int) {
	if n > 0 {
		i.workers = n
	}
}

// Run scans directory for PDFs, parses them concurrently and replaces
// the store contents with the extracted records.
func (i *Ingester) Run(ctx context.Context, directory string) (*Summary, error) {
	files, err := i.scanner.FindPDFsInDirectory(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", directory)
	}

	summary := &Summary{FilesFound: len(files)}

	var mu sync.Mutex
	var all []extract.Record

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			records, err := i.parseFile(file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A damaged file should not abort the whole run
				summary.FilesFailed++
				i.logger.Warn("failed to parse PDF",
					zap.String("file", file.Path),
					zap.Error(err))
				return nil
			}
			summary.FilesParsed++
			all = append(all, records...)
			i.logger.Info("parsed PDF",
				zap.String("file", file.Name),
				zap.Int("records", len(records)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(all) == 0 {
		return summary, fmt.Errorf("no records extracted from %d files", len(files))
	}

	// Parse order is nondeterministic under the worker pool; restore the
	// catalogue ordering before insert.
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].PostalCode != all[b].PostalCode {
			return all[a].PostalCode < all[b].PostalCode
		}
		return all[a].SalaryRank < all[b].SalaryRank
	})

	if err := i.store.ReplaceAll(all); err != nil {
		return summary, fmt.Errorf("failed to store records: %w", err)
	}

	summary.Records = len(all)
	for _, rec := range all {
		if rec.Salary > 0 {
			summary.RecordsWithSalary++
		}
	}

	i.logger.Info("ingest complete",
		zap.Int("files", summary.FilesParsed),
		zap.Int("failed", summary.FilesFailed),
		zap.Int("records", summary.Records),
		zap.Int("with_salary", summary.RecordsWithSalary))

	return summary, nil
}

// parseFile reads and extracts one PDF.
func (i *Ingester) parseFile(file pdfdoc.FileInfo) ([]extract.Record, error) {
	doc, err := i.reader.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	return i.extractor.ExtractDocument(doc), nil
}
