package catalog

import (
	"net/http"
	"net/url"
	"strconv"
)

// pageRequest is a resolved limit/offset pair.
type pageRequest struct {
	Limit  int
	Offset int
}

// PageEnvelope is the paginated list response body.
type PageEnvelope struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []ProductView `json:"results"`
}

// parsePage reads limit and offset. A missing, malformed or non-positive
// limit falls back to the default and limits above the maximum are clamped.
// A malformed or negative offset is treated as zero.
func (c ListConfig) parsePage(q url.Values) pageRequest {
	p := pageRequest{Limit: c.DefaultLimit}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, c.MaxLimit)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

func nextLink(r *http.Request, p pageRequest, count int) *string {
	if p.Offset+p.Limit >= count {
		return nil
	}
	return pageLink(r, p.Limit, p.Offset+p.Limit)
}

// previousLink drops the offset parameter entirely when it steps back to
// the first page.
func previousLink(r *http.Request, p pageRequest) *string {
	if p.Offset <= 0 {
		return nil
	}
	return pageLink(r, p.Limit, p.Offset-p.Limit)
}

func pageLink(r *http.Request, limit, offset int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
