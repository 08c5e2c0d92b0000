package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme is the URI scheme rendered by Locator.String and accepted by
// ParseLocator.
const Scheme = "content"

// Locator identifies a resource: an authority, the path segments naming a
// collection, and an optional trailing numeric record id. Two locators are
// the same resource when authority, path and id are equal.
type Locator struct {
	Authority string
	Path      []string
	ID        int64
	HasID     bool
}

// NewLocator returns a collection locator for authority and path.
func NewLocator(authority string, path ...string) Locator {
	return Locator{Authority: authority, Path: append([]string(nil), path...)}
}

// ParseLocator parses "content://authority/seg/seg[/id]". A final segment
// made only of digits becomes the trailing id.
// Returns ErrInvalidLocator for a wrong scheme, an empty authority or an
// empty path segment.
func ParseLocator(s string) (Locator, error) {
	rest, ok := strings.CutPrefix(s, Scheme+"://")
	if !ok {
		return Locator{}, fmt.Errorf("%w: %q: scheme must be %s", ErrInvalidLocator, s, Scheme)
	}
	authority, path, _ := strings.Cut(rest, "/")
	if authority == "" {
		return Locator{}, fmt.Errorf("%w: %q: empty authority", ErrInvalidLocator, s)
	}
	l := Locator{Authority: authority}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return l, nil
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" {
			return Locator{}, fmt.Errorf("%w: %q: empty path segment", ErrInvalidLocator, s)
		}
	}
	last := segments[len(segments)-1]
	if isDigits(last) {
		id, err := strconv.ParseInt(last, 10, 64)
		if err != nil {
			return Locator{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocator, s, err)
		}
		l.ID = id
		l.HasID = true
		segments = segments[:len(segments)-1]
	}
	l.Path = segments
	return l, nil
}

// MustParseLocator is like ParseLocator but panics on error.
func MustParseLocator(s string) Locator {
	l, err := ParseLocator(s)
	if err != nil {
		panic(err)
	}
	return l
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the canonical form of the locator.
func (l Locator) String() string {
	var sb strings.Builder
	sb.WriteString(Scheme)
	sb.WriteString("://")
	sb.WriteString(l.Authority)
	for _, seg := range l.Path {
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	if l.HasID {
		sb.WriteByte('/')
		sb.WriteString(strconv.FormatInt(l.ID, 10))
	}
	return sb.String()
}

// WithAppendedID returns a copy of l addressing record id.
// The receiver is not modified.
func (l Locator) WithAppendedID(id int64) Locator {
	return Locator{
		Authority: l.Authority,
		Path:      append([]string(nil), l.Path...),
		ID:        id,
		HasID:     true,
	}
}

// Collection returns l without its trailing id.
func (l Locator) Collection() Locator {
	return Locator{Authority: l.Authority, Path: append([]string(nil), l.Path...)}
}

// Equal reports whether l and o address the same resource.
func (l Locator) Equal(o Locator) bool {
	if l.Authority != o.Authority || l.HasID != o.HasID || len(l.Path) != len(o.Path) {
		return false
	}
	if l.HasID && l.ID != o.ID {
		return false
	}
	return l.PathEquals(o.Path)
}

// PathEquals reports whether the locator's path segments equal path.
func (l Locator) PathEquals(path []string) bool {
	if len(l.Path) != len(path) {
		return false
	}
	for i := range path {
		if l.Path[i] != path[i] {
			return false
		}
	}
	return true
}

// segments returns the path with the trailing id rendered as a segment.
func (l Locator) segments() []string {
	if !l.HasID {
		return l.Path
	}
	return append(append([]string(nil), l.Path...), strconv.FormatInt(l.ID, 10))
}

// IsDescendantOf reports whether l equals ancestor or lies below it.
// content://a/notes/5 is a descendant of content://a/notes and of
// content://a, but not the other way round.
func (l Locator) IsDescendantOf(ancestor Locator) bool {
	if l.Authority != ancestor.Authority {
		return false
	}
	mine, theirs := l.segments(), ancestor.segments()
	if len(theirs) > len(mine) {
		return false
	}
	for i := range theirs {
		if mine[i] != theirs[i] {
			return false
		}
	}
	return true
}
