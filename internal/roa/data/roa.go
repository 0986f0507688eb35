package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bgpstack/roa-history/internal/pkg/database"
	"github.com/bgpstack/roa-history/internal/roa/biz"
)

// MaxLimit is the store-side clamp on requested page sizes. The API layer
// reports the limit as requested; only the query itself is bounded.
const MaxLimit = 10000

// ROAHistoryPO is the database model: one validity range of one ROA fact.
// A fact observed over several disjoint periods has several rows.
type ROAHistoryPO struct {
	ID       int64  `gorm:"primarykey"`
	TAL      string `gorm:"column:tal;size:16;not null;index:idx_roa_history_tal"`
	Prefix   string `gorm:"type:cidr;not null;index:idx_roa_history_prefix"`
	MaxLen   int    `gorm:"column:max_len;not null"`
	ASN      int64  `gorm:"column:asn;not null;index:idx_roa_history_asn"`
	Validity string `gorm:"type:daterange;not null"`
}

func (ROAHistoryPO) TableName() string {
	return "roa_history"
}

// DumpFilePO is the database model for one ingested VRP dump file.
type DumpFilePO struct {
	ID        int64     `gorm:"primarykey"`
	URL       string    `gorm:"column:url;not null"`
	TAL       string    `gorm:"column:tal;size:16;not null;index:idx_roa_files_tal"`
	FileDate  time.Time `gorm:"column:file_date;type:date;not null"`
	RowsCount int64     `gorm:"column:rows_count;not null"`
}

func (DumpFilePO) TableName() string {
	return "roa_files"
}

// ROARepo implements biz.ROARepo against PostgreSQL.
type ROARepo struct {
	db *database.DB
}

func NewROARepo(db *database.DB) biz.ROARepo {
	return &ROARepo{db: db}
}

type lookupRow struct {
	TAL        string
	Prefix     string
	MaxLen     int
	ASN        int64
	DateRanges []byte `gorm:"column:date_ranges"`
}

// Lookup aggregates validity ranges per distinct fact. The daterange text
// form ("[2021-02-09,2022-01-27)") is returned untouched; endpoint
// semantics belong to the normalizer, not this layer.
//
// Prefix matching follows ROA validation semantics: the candidate must be
// contained within (or equal to) the stored prefix and no longer than its
// max_len.
func (r *ROARepo) Lookup(ctx context.Context, f *biz.LookupFilter, limit, offset int) ([]*biz.RawEntry, error) {
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := r.db.DB.WithContext(ctx).
		Table("roa_history").
		Select("tal, prefix::text AS prefix, max_len, asn, json_agg(validity::text ORDER BY lower(validity)) AS date_ranges")

	if f.Prefix != "" {
		q = q.Where("?::cidr <<= prefix AND masklen(?::cidr) <= max_len", f.Prefix, f.Prefix)
	}
	if f.ASN != nil {
		q = q.Where("asn = ?", *f.ASN)
	}
	if f.TAL != "" {
		q = q.Where("tal = ?", f.TAL)
	}
	if f.Date != "" {
		q = q.Where("validity @> ?::date", f.Date)
	}
	if f.MaxLen != nil {
		q = q.Where("max_len = ?", *f.MaxLen)
	}

	var rows []lookupRow
	err := q.Group("tal, prefix, max_len, asn").
		Order("prefix, asn, max_len, tal").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("history lookup: %w", err)
	}

	entries := make([]*biz.RawEntry, 0, len(rows))
	for _, row := range rows {
		var ranges []string
		if len(row.DateRanges) > 0 {
			if err := json.Unmarshal(row.DateRanges, &ranges); err != nil {
				return nil, fmt.Errorf("decode date ranges: %w", err)
			}
		}
		entries = append(entries, &biz.RawEntry{
			TAL:        row.TAL,
			Prefix:     row.Prefix,
			MaxLen:     row.MaxLen,
			ASN:        row.ASN,
			DateRanges: ranges,
		})
	}

	return entries, nil
}

func (r *ROARepo) ListFiles(ctx context.Context, tal string) ([]*biz.DumpFile, error) {
	q := r.db.DB.WithContext(ctx).Model(&DumpFilePO{})
	if tal != "" {
		q = q.Where("tal = ?", tal)
	}

	var pos []DumpFilePO
	if err := q.Order("file_date DESC, tal").Find(&pos).Error; err != nil {
		return nil, fmt.Errorf("files lookup: %w", err)
	}

	files := make([]*biz.DumpFile, len(pos))
	for i, po := range pos {
		files[i] = &biz.DumpFile{
			URL:       po.URL,
			TAL:       po.TAL,
			FileDate:  po.FileDate.Format("2006-01-02"),
			RowsCount: po.RowsCount,
		}
	}

	return files, nil
}
