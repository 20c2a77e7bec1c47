package helpers

import (
	"net/url"
	"strings"
)

// SetRawQuery returns rawQuery with key set to value.
func SetRawQuery(rawQuery, key, value string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	values.Set(key, value)
	return values.Encode()
}

// BuildURL replaces the query string of target with rawQuery. An empty query
// leaves no trailing question mark.
func BuildURL(target, rawQuery string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	if rawQuery == "" {
		return target
	}
	return target + "?" + rawQuery
}
