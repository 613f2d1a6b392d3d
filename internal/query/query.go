// Package query serializes ListParams to and from URL query strings.
//
// Two builders share the same field names but differ in when they emit the page:
// RequestQuery is the payload sent to the Deals API and includes any page > 0;
// URLQuery is the shareable dashboard location and includes the page only when > 1,
// so the first page of a view has a clean URL.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/dealbrief/internal/models"
)

// Query parameter keys.
const (
	KeyPage     = "page"
	KeyOrdering = string(models.FieldOrdering)
)

// RequestQuery builds the query string for a list request, including a leading "?".
// It returns "" when nothing is set.
func RequestQuery(p models.ListParams) string {
	return build(p, 0)
}

// URLQuery builds the query string describing the dashboard view, including a leading "?".
func URLQuery(p models.ListParams) string {
	return build(p, 1)
}

func build(p models.ListParams, pageAbove int) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	for _, f := range append(models.FilterFields, models.FieldOrdering) {
		if v := strings.TrimSpace(p.Get(f)); v != "" {
			add(string(f), v)
		}
	}
	if p.Page > pageAbove {
		add(KeyPage, strconv.Itoa(p.Page))
	}
	return b.String()
}

// Parse reads ListParams from a raw query string (with or without the leading "?").
// Unknown keys are ignored; values are trimmed; a missing or invalid page yields 1.
func Parse(raw string) models.ListParams {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		values = lenientParse(raw)
	}
	return FromValues(values)
}

// FromValues reads ListParams from already parsed query values.
func FromValues(values url.Values) models.ListParams {
	p := models.ListParams{Page: 1}
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	p.Search = get(string(models.FieldSearch))
	p.Status = get(string(models.FieldStatus))
	p.Sector = get(string(models.FieldSector))
	p.Company = get(string(models.FieldCompany))
	p.Stage = get(string(models.FieldStage))
	p.Category = get(string(models.FieldCategory))
	p.Ordering = get(KeyOrdering)
	if n, err := strconv.Atoi(get(KeyPage)); err == nil && n > 0 {
		p.Page = n
	}
	return p
}

// lenientParse keeps the well-formed pairs of a query string that url.ParseQuery rejected.
func lenientParse(raw string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(strings.TrimPrefix(raw, "?"), "&") {
		key, value, _ := strings.Cut(pair, "=")
		k, err1 := url.QueryUnescape(key)
		v, err2 := url.QueryUnescape(value)
		if err1 != nil || err2 != nil || k == "" {
			continue
		}
		values.Add(k, v)
	}
	return values
}
