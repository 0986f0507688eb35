package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bgpstack/roa-history/internal/roa/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCROARepo_Lookup(t *testing.T) {
	var gotParams map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/query_history_2", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"tal": "arin", "prefix": "8.8.8.0/24", "max_len": 24, "asn": 15169,
			 "date_ranges": ["[2021-02-09,2022-01-27)"]}
		]`))
	}))
	defer srv.Close()

	repo := NewRPCROARepo(RPCConfig{BaseURL: srv.URL, APIKey: "test-key"})

	filter := &biz.LookupFilter{Prefix: "8.8.8.0/24", TAL: "arin", Limit: 100, Page: 1}
	rows, err := repo.Lookup(context.Background(), filter, 100, 0)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "arin", rows[0].TAL)
	assert.Equal(t, "8.8.8.0/24", rows[0].Prefix)
	assert.Equal(t, 24, rows[0].MaxLen)
	assert.Equal(t, int64(15169), rows[0].ASN)
	assert.Equal(t, []string{"[2021-02-09,2022-01-27)"}, rows[0].DateRanges)

	// Unconstrained asn/max_len travel as the -1 wire sentinel.
	assert.Equal(t, float64(-1), gotParams["asn"])
	assert.Equal(t, float64(-1), gotParams["max_len"])
	assert.Equal(t, "8.8.8.0/24", gotParams["prefix"])
	assert.Equal(t, "arin", gotParams["nic"])
	assert.Equal(t, float64(100), gotParams["res_limit"])
	assert.Equal(t, float64(0), gotParams["res_offset"])
}

func TestRPCROARepo_ConstrainedSentinels(t *testing.T) {
	var gotParams map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := NewRPCROARepo(RPCConfig{BaseURL: srv.URL})

	asn := int64(0)
	maxLen := 24
	filter := &biz.LookupFilter{ASN: &asn, MaxLen: &maxLen, Limit: 10, Page: 2}
	_, err := repo.Lookup(context.Background(), filter, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, float64(0), gotParams["asn"])
	assert.Equal(t, float64(24), gotParams["max_len"])
	assert.Equal(t, float64(10), gotParams["res_offset"])
}

func TestRPCROARepo_StoreMessageBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "canceling statement due to statement timeout"}`))
	}))
	defer srv.Close()

	repo := NewRPCROARepo(RPCConfig{BaseURL: srv.URL})

	_, err := repo.Lookup(context.Background(), &biz.LookupFilter{Limit: 100, Page: 1}, 100, 0)
	require.Error(t, err)
	assert.Equal(t, "canceling statement due to statement timeout", err.Error())
}

func TestRPCROARepo_ListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/query_file", r.URL.Path)
		w.Write([]byte(`[
			{"url": "https://ftp.ripe.net/rpki/arin.tal/2021/02/09/roas.csv",
			 "tal": "arin", "file_date": "2021-02-09", "rows_count": 4821}
		]`))
	}))
	defer srv.Close()

	repo := NewRPCROARepo(RPCConfig{BaseURL: srv.URL})

	files, err := repo.ListFiles(context.Background(), "arin")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "arin", files[0].TAL)
	assert.Equal(t, "2021-02-09", files[0].FileDate)
	assert.Equal(t, int64(4821), files[0].RowsCount)
}
