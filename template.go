package zenobjects

import (
	"fmt"
	"sort"
	"strings"
)

// SubstitutePath replaces the first occurrence of {key} in template with the
// value's string form, for every key in values. Keys absent from the template
// are skipped silently; the placeholder is left untouched when no value is
// supplied for it.
func SubstitutePath(template string, values map[string]string) string {
	if len(values) == 0 {
		return template
	}
	for key, value := range values {
		template = strings.Replace(template, "{"+key+"}", value, 1)
	}
	return template
}

// AppendQuery appends ?k1=v1&k2=v2… to path in sorted key order. Values are
// not url-encoded; callers must pre-encode unsafe characters.
func AppendQuery(path string, values map[string]string) string {
	if len(values) == 0 {
		return path
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(path)
	for i, key := range keys {
		if i == 0 {
			builder.WriteByte('?')
		} else {
			builder.WriteByte('&')
		}
		builder.WriteString(fmt.Sprintf("%s=%s", key, values[key]))
	}
	return builder.String()
}
