package netstorage

import (
	"net/url"
	"strings"
)

// Separator is the path separator used on the wire.
const Separator = "/"

// Path is a normalized, slash-delimited storage path. It never carries a
// leading or trailing separator; the empty Path is the root.
type Path struct {
	value string
}

// PathFromString normalizes s by stripping outer separators. Inner
// separators are kept as they are.
func PathFromString(s string) Path {
	return Path{value: strings.Trim(s, `\/`)}
}

// RootPath returns the empty root path.
func RootPath() Path {
	return Path{}
}

// Append returns p/other, normalized.
func (p Path) Append(other Path) Path {
	return PathFromString(p.value + Separator + other.value)
}

// Prepend returns other/p, normalized.
func (p Path) Prepend(other Path) Path {
	return PathFromString(other.value + Separator + p.value)
}

// Equal reports whether both paths normalize to the same string.
func (p Path) Equal(other Path) bool {
	return p.value == other.value
}

// IsRoot reports whether p is the empty root path.
func (p Path) IsRoot() bool {
	return p.value == ""
}

// Segments splits p on the separator. The root has no segments.
func (p Path) Segments() []string {
	if p.value == "" {
		return nil
	}
	return strings.Split(p.value, Separator)
}

// Base returns the last segment of p, or "" for the root.
func (p Path) Base() string {
	if i := strings.LastIndex(p.value, Separator); i >= 0 {
		return p.value[i+1:]
	}
	return p.value
}

// Dir returns p without its last segment.
func (p Path) Dir() Path {
	if i := strings.LastIndex(p.value, Separator); i >= 0 {
		return PathFromString(p.value[:i])
	}
	return RootPath()
}

// ContainsPathPart reports whether any segment of p equals part.
func (p Path) ContainsPathPart(part Path) bool {
	for _, segment := range strings.Split(p.value, Separator) {
		if segment == part.value {
			return true
		}
	}
	return false
}

// URLEncode percent-encodes every segment. Separators are left alone.
func (p Path) URLEncode() Path {
	segments := strings.Split(p.value, Separator)
	for i, segment := range segments {
		segments[i] = escapeSegment(segment)
	}
	return PathFromString(strings.Join(segments, Separator))
}

// URLDecode reverses URLEncode. Segments that are not valid escapes are
// kept verbatim.
func (p Path) URLDecode() Path {
	segments := strings.Split(p.value, Separator)
	for i, segment := range segments {
		if decoded, err := url.PathUnescape(segment); err == nil {
			segments[i] = decoded
		}
	}
	return PathFromString(strings.Join(segments, Separator))
}

func (p Path) String() string {
	return p.value
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

func (p *Path) UnmarshalText(text []byte) error {
	*p = PathFromString(string(text))
	return nil
}

// escapeSegment encodes everything outside the RFC 3986 unreserved set,
// spaces included, as %XX.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
