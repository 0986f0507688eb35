package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://api.roas.example.net/"

func TestNextPage_FewerRowsThanLimit(t *testing.T) {
	f := &LookupFilter{Limit: 100, Page: 1}

	_, _, ok := NextPage(f, 99, testBaseURL)
	assert.False(t, ok)

	_, _, ok = NextPage(f, 0, testBaseURL)
	assert.False(t, ok)
}

func TestNextPage_FullPageAdvertisesNext(t *testing.T) {
	f := &LookupFilter{Limit: 2, Page: 1}

	num, url, ok := NextPage(f, 2, testBaseURL)
	require.True(t, ok)
	assert.Equal(t, 2, num)
	assert.Equal(t, "https://api.roas.example.net/lookup?limit=2&page=2", url)
}

func TestNextPage_AllFiltersFixedOrder(t *testing.T) {
	asn := int64(15169)
	maxLen := 24
	f := &LookupFilter{
		Prefix: "8.8.8.0/24",
		ASN:    &asn,
		TAL:    "arin",
		Date:   "2021-06-01",
		MaxLen: &maxLen,
		Limit:  50,
		Page:   3,
	}

	num, url, ok := NextPage(f, 50, testBaseURL)
	require.True(t, ok)
	assert.Equal(t, 4, num)
	assert.Equal(t,
		"https://api.roas.example.net/lookup?prefix=8.8.8.0%2F24&asn=15169&tal=arin&limit=50&date=2021-06-01&max_len=24&page=4",
		url)
}

func TestNextPage_OmitsAbsentFilters(t *testing.T) {
	f := &LookupFilter{TAL: "ripencc", Limit: 10, Page: 1}

	_, url, ok := NextPage(f, 10, testBaseURL)
	require.True(t, ok)
	assert.Equal(t, "https://api.roas.example.net/lookup?tal=ripencc&limit=10&page=2", url)
	assert.NotContains(t, url, "prefix=")
	assert.NotContains(t, url, "asn=")
	assert.NotContains(t, url, "date=")
	assert.NotContains(t, url, "max_len=")
}

func TestNextPage_ZeroASNIsAConstraint(t *testing.T) {
	// ASN 0 is reserved but technically valid; an explicit optional must not
	// swallow it the way a -1 sentinel comparison would.
	asn := int64(0)
	f := &LookupFilter{ASN: &asn, Limit: 5, Page: 1}

	_, url, ok := NextPage(f, 5, testBaseURL)
	require.True(t, ok)
	assert.Contains(t, url, "asn=0")
}
