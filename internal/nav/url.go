package nav

import (
	"net/url"
	"strings"
)

// URL query parameters owned by the store.
const (
	ParamSearch = "search"
	ParamTag    = "tag"
)

// contentPrefix marks paths that render a single document.
const contentPrefix = "/docs/"

// ParseQuery reads the search text and tag from URL query values.
func ParseQuery(values url.Values) (search, tag string) {
	return values.Get(ParamSearch), values.Get(ParamTag)
}

// EncodeQuery returns a copy of base with the search and tag parameters set
// from s. Empty values remove the parameter; other parameters are kept.
func EncodeQuery(base url.Values, s State) url.Values {
	out := make(url.Values, len(base)+2)
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	setOrDelete(out, ParamSearch, s.TextQuery)
	setOrDelete(out, ParamTag, s.ActiveTag)
	return out
}

func setOrDelete(values url.Values, key, value string) {
	if value == "" {
		values.Del(key)
		return
	}
	values.Set(key, value)
}

// IsContentPage reports whether path renders a single document.
func IsContentPage(path string) bool {
	return strings.HasPrefix(path, contentPrefix) && len(path) > len(contentPrefix)
}
