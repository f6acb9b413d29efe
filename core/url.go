package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

// IsAbsoluteURL reports whether u has a scheme followed by "//", or is
// protocol-relative ("//host/path").
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// CombineURLs joins base and rel with exactly one slash.
func CombineURLs(base, rel string) string {
	if rel == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
}

// BuildFullPath prefixes rel with base unless rel is absolute and absolute
// URLs are allowed.
func BuildFullPath(base, rel string, allowAbsolute bool) string {
	if base != "" && (!IsAbsoluteURL(rel) || !allowAbsolute) {
		return CombineURLs(base, rel)
	}
	return rel
}

// FullURL builds the final request URL: base and relative URL joined, any
// fragment dropped, and the serialized params appended.
func (c *Config) FullURL() (string, error) {
	allowAbsolute := c.AllowAbsoluteURLs == nil || *c.AllowAbsoluteURLs
	full := BuildFullPath(c.BaseURL, c.URL, allowAbsolute)
	if i := strings.IndexByte(full, '#'); i >= 0 {
		full = full[:i]
	}

	var qs string
	if c.ParamsSerializer != nil {
		qs = c.ParamsSerializer(c.Params)
	} else {
		qs = c.Params.Encode()
	}
	if qs != "" {
		if strings.Contains(full, "?") {
			full += "&" + qs
		} else {
			full += "?" + qs
		}
	}

	if _, err := url.Parse(full); err != nil {
		return "", NewConfigError(fmt.Sprintf("invalid url %q: %v", full, err), c)
	}
	return full, nil
}
