package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bgpstack/roa-history/internal/roa/biz"
	"github.com/tidwall/gjson"
)

// RPCConfig configures the remote history store client.
type RPCConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RPCROARepo implements biz.ROARepo against a PostgREST-style RPC endpoint
// instead of a local database. Unconstrained asn/max_len travel as -1 and
// empty strings on this wire; that sentinel convention stops here.
type RPCROARepo struct {
	cfg    RPCConfig
	client *http.Client
}

func NewRPCROARepo(cfg RPCConfig) biz.ROARepo {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &RPCROARepo{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (r *RPCROARepo) Lookup(ctx context.Context, f *biz.LookupFilter, limit, offset int) ([]*biz.RawEntry, error) {
	asn := int64(-1)
	if f.ASN != nil {
		asn = *f.ASN
	}
	maxLen := -1
	if f.MaxLen != nil {
		maxLen = *f.MaxLen
	}

	body, err := r.call(ctx, "query_history_2", map[string]interface{}{
		"prefix":     f.Prefix,
		"asn":        asn,
		"nic":        f.TAL,
		"date":       f.Date,
		"max_len":    maxLen,
		"res_limit":  limit,
		"res_offset": offset,
	})
	if err != nil {
		return nil, err
	}

	var entries []*biz.RawEntry
	gjson.ParseBytes(body).ForEach(func(_, row gjson.Result) bool {
		entry := &biz.RawEntry{
			TAL:    row.Get("tal").String(),
			Prefix: row.Get("prefix").String(),
			MaxLen: int(row.Get("max_len").Int()),
			ASN:    row.Get("asn").Int(),
		}
		for _, token := range row.Get("date_ranges").Array() {
			entry.DateRanges = append(entry.DateRanges, token.String())
		}
		entries = append(entries, entry)
		return true
	})

	return entries, nil
}

func (r *RPCROARepo) ListFiles(ctx context.Context, tal string) ([]*biz.DumpFile, error) {
	body, err := r.call(ctx, "query_file", map[string]interface{}{"tal": tal})
	if err != nil {
		return nil, err
	}

	var files []*biz.DumpFile
	gjson.ParseBytes(body).ForEach(func(_, row gjson.Result) bool {
		files = append(files, &biz.DumpFile{
			URL:       row.Get("url").String(),
			TAL:       row.Get("tal").String(),
			FileDate:  row.Get("file_date").String(),
			RowsCount: row.Get("rows_count").Int(),
		})
		return true
	})

	return files, nil
}

// call performs one RPC round trip. A response object carrying a "message"
// field instead of rows is the store's error report and comes back as a
// plain error so the caller can surface the message verbatim.
func (r *RPCROARepo) call(ctx context.Context, fn string, params map[string]interface{}) ([]byte, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode rpc params: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/rpc/%s", strings.TrimRight(r.cfg.BaseURL, "/"), fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("apikey", r.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", fn, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}

	if msg := gjson.GetBytes(body, "message"); msg.Exists() {
		return nil, errors.New(msg.String())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc %s: unexpected status %d", fn, resp.StatusCode)
	}

	return body, nil
}
