package biz

import (
	"net/url"
	"strconv"
	"strings"
)

// NextPage decides whether a further page is likely and, if so, returns the
// next page number and a fully reconstructed lookup URL.
//
// A page that comes back with at least as many rows as requested is assumed
// to have more behind it. This is a heuristic, not an exact has-more signal:
// when the total row count is an exact multiple of the limit the last
// advertised page comes back empty.
//
// The URL carries exactly the filters present in the request, in fixed
// field order, with the page number incremented.
func NextPage(f *LookupFilter, count int, baseURL string) (int, string, bool) {
	if count < f.Limit {
		return 0, "", false
	}

	next := f.Page + 1

	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}

	if f.Prefix != "" {
		add("prefix", f.Prefix)
	}
	if f.ASN != nil {
		add("asn", strconv.FormatInt(*f.ASN, 10))
	}
	if f.TAL != "" {
		add("tal", f.TAL)
	}
	add("limit", strconv.Itoa(f.Limit))
	if f.Date != "" {
		add("date", f.Date)
	}
	if f.MaxLen != nil {
		add("max_len", strconv.Itoa(*f.MaxLen))
	}
	add("page", strconv.Itoa(next))

	return next, strings.TrimRight(baseURL, "/") + "/lookup?" + strings.Join(params, "&"), true
}
