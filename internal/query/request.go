package query

import (
	"fmt"
	"net/url"
	"strings"
)

// PageParam is the request parameter carrying the page number.
const PageParam = "page_num"

// Request is the part of the incoming HTTP request a query reads:
// the request URI (path plus query string) and its parameters.
type Request struct {
	URI    string
	Params url.Values
}

// NewRequest parses a request URI such as "/books/?genre=poetry&page_num=2".
func NewRequest(uri string) (Request, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Request{}, fmt.Errorf("parse request uri %q: %w", uri, err)
	}
	return Request{URI: uri, Params: u.Query()}, nil
}

// PageNum returns the page_num parameter and whether it was present.
// Values convert leniently: "3" and "3rd" are 3, "abc" is 0.
func (r Request) PageNum() (int64, bool) {
	if r.Params == nil || !r.Params.Has(PageParam) {
		return 0, false
	}
	return intval(r.Params.Get(PageParam)), true
}

// intval parses the leading integer of s, returning 0 when there is none.
func intval(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// withPage returns the request URI with page_num removed and, when
// page > 1, appended again with the new value. Other parameters keep
// their original order and encoding.
func (r Request) withPage(page int64) string {
	uri := r.URI
	if uri == "" {
		uri = "/"
	}
	path, rawQuery, _ := strings.Cut(uri, "?")

	var parts []string
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil && k == PageParam {
			continue
		}
		parts = append(parts, part)
	}
	if page > 1 {
		parts = append(parts, fmt.Sprintf("%s=%d", PageParam, page))
	}

	if len(parts) == 0 {
		return path
	}
	return path + "?" + strings.Join(parts, "&")
}
