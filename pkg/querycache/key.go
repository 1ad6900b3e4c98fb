package querycache

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Key is a hierarchical cache key: [domain, collection, ...discriminators].
// Invalidating a key invalidates every key it is a prefix of.
type Key struct {
	parts []string
}

// NewKey builds a key from its parts
func NewKey(parts ...interface{}) Key {
	return Key{}.Append(parts...)
}

func formatPart(p interface{}) string {
	switch v := p.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Append returns a new key nested below k
func (k Key) Append(parts ...interface{}) Key {
	result := make([]string, 0, len(k.parts)+len(parts))
	result = append(result, k.parts...)
	for _, p := range parts {
		result = append(result, formatPart(p))
	}
	return Key{parts: result}
}

// Parts ...
func (k Key) Parts() []string {
	result := make([]string, len(k.parts))
	copy(result, k.parts)
	return result
}

// Len ...
func (k Key) Len() int {
	return len(k.parts)
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) k
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.parts) > len(k.parts) {
		return false
	}
	for i, p := range prefix.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}

// String is unambiguous: every part is path-escaped before joining
func (k Key) String() string {
	escaped := make([]string, 0, len(k.parts))
	for _, p := range k.parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return strings.Join(escaped, "/")
}

func (k Key) prefixes() []Key {
	result := make([]Key, 0, len(k.parts))
	for i := 1; i <= len(k.parts); i++ {
		result = append(result, Key{parts: k.parts[:i]})
	}
	return result
}
