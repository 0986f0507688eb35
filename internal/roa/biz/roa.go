package biz

import (
	"context"
	"fmt"

	apperrors "github.com/bgpstack/roa-history/internal/pkg/errors"
	"github.com/bgpstack/roa-history/internal/pkg/logger"
	"github.com/bgpstack/roa-history/internal/pkg/validator"
	"go.uber.org/zap"
)

// DefaultLimit is the number of entries per page when the request does not
// specify one.
const DefaultLimit = 100

// LookupFilter is the validated query intent for a history lookup. Absent
// optional filters are nil pointers or empty strings; the -1 / "" sentinel
// convention exists only on the store wire.
type LookupFilter struct {
	Prefix string
	ASN    *int64
	TAL    string
	Date   string
	MaxLen *int
	Limit  int
	Page   int
}

// Validate checks the filter before dispatch. page >= 1 is a hard failure,
// not a clamp; everything else is permissively optional. Prefix syntax is
// checked here so a typo fails fast instead of surfacing as a store error.
func (f *LookupFilter) Validate() error {
	if f.Page < 1 {
		return apperrors.NewValidationError("parameters validation failed: page>=1")
	}
	if f.Prefix != "" && !validator.IsValidPrefix(f.Prefix) {
		return apperrors.NewValidationError(fmt.Sprintf("parameters validation failed: invalid prefix %q", f.Prefix))
	}
	return nil
}

// Offset returns the row offset for the requested page.
func (f *LookupFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// RawEntry is one fact row as returned by the store, date ranges still in
// their storage-layer token form.
type RawEntry struct {
	TAL        string
	Prefix     string
	MaxLen     int
	ASN        int64
	DateRanges []string
}

// Entry is one normalized ROA history fact. Interval order is store order;
// overlapping ranges are passed through as received.
type Entry struct {
	TAL        string         `json:"tal"`
	Prefix     string         `json:"prefix"`
	MaxLen     int            `json:"max_len"`
	ASN        int64          `json:"asn"`
	DateRanges []DateInterval `json:"date_ranges"`
}

// DumpFile describes one ingested VRP dump file.
type DumpFile struct {
	URL       string `json:"url"`
	TAL       string `json:"tal"`
	FileDate  string `json:"file_date"`
	RowsCount int64  `json:"rows_count"`
}

// ROARepo is the boundary to the history store. One synchronous round trip
// per call; no retries, no caching. Limit clamping is the store's concern.
type ROARepo interface {
	Lookup(ctx context.Context, filter *LookupFilter, limit, offset int) ([]*RawEntry, error)
	ListFiles(ctx context.Context, tal string) ([]*DumpFile, error)
}

// LookupResult carries one page of normalized facts plus the pagination
// decision. NextPageNum and NextPage are nil when no further page is
// advertised.
type LookupResult struct {
	Limit       int
	Count       int
	NextPageNum *int
	NextPage    *string
	Entries     []*Entry
}

// ROAUseCase contains the lookup business logic.
type ROAUseCase struct {
	repo    ROARepo
	baseURL string
	logger  *logger.Logger
}

func NewROAUseCase(repo ROARepo, baseURL string, log *logger.Logger) *ROAUseCase {
	return &ROAUseCase{
		repo:    repo,
		baseURL: baseURL,
		logger:  log,
	}
}

// Lookup validates the filter, dispatches it to the store, normalizes the
// returned date ranges and plans pagination. Store failures come back as
// query errors with the store's message intact.
func (uc *ROAUseCase) Lookup(ctx context.Context, f *LookupFilter) (*LookupResult, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	rows, err := uc.repo.Lookup(ctx, f, f.Limit, f.Offset())
	if err != nil {
		return nil, apperrors.NewQueryError(err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, uc.normalizeEntry(ctx, row))
	}

	result := &LookupResult{
		Limit:   f.Limit,
		Count:   len(entries),
		Entries: entries,
	}

	if num, url, ok := NextPage(f, len(entries), uc.baseURL); ok {
		result.NextPageNum = &num
		result.NextPage = &url
	}

	return result, nil
}

// normalizeEntry converts a raw store row into canonical form. A token that
// cannot be parsed is dropped from the entry and logged; the source data is
// informational-only, so one bad range must not fail the whole request.
func (uc *ROAUseCase) normalizeEntry(ctx context.Context, row *RawEntry) *Entry {
	ranges := make([]DateInterval, 0, len(row.DateRanges))
	for _, token := range row.DateRanges {
		interval, err := ParseInterval(token)
		if err != nil {
			uc.logger.WithContext(ctx).Warn("skipping malformed date range",
				zap.String("token", token),
				zap.String("prefix", row.Prefix),
				zap.Int64("asn", row.ASN),
				zap.Error(err),
			)
			continue
		}
		if interval.Inverted() {
			uc.logger.WithContext(ctx).Warn("inverted date range in store data",
				zap.String("token", token),
				zap.String("prefix", row.Prefix),
				zap.Int64("asn", row.ASN),
			)
		}
		ranges = append(ranges, interval)
	}

	return &Entry{
		TAL:        row.TAL,
		Prefix:     row.Prefix,
		MaxLen:     row.MaxLen,
		ASN:        row.ASN,
		DateRanges: ranges,
	}
}

// ListFiles returns the dump file listing for a trust anchor ("" for all),
// unmodified from the store.
func (uc *ROAUseCase) ListFiles(ctx context.Context, tal string) ([]*DumpFile, error) {
	files, err := uc.repo.ListFiles(ctx, tal)
	if err != nil {
		return nil, apperrors.NewQueryError(err)
	}
	return files, nil
}
