// Package did parses and formats Decentralized Identifiers following the
// did-core grammar: did:<method>:<method-specific-id>[/path][?query][#fragment].
package did

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidSyntax = errors.New("invalid DID syntax")

const scheme = "did"

// DID is an immutable parsed identifier. Components are kept verbatim;
// percent-encoded sequences are validated but never decoded and casing is
// never normalized, so String is the exact inverse of Parse.
type DID struct {
	Method   string
	ID       string
	Path     string // includes the leading '/'
	Query    string // without the '?'
	Fragment string // without the '#'
}

// Parse validates s against the DID grammar.
func Parse(s string) (*DID, error) {
	rest, ok := cutPrefix(s, scheme+":")
	if !ok {
		return nil, errors.Wrap(ErrInvalidSyntax, "missing did: prefix")
	}

	d := &DID{}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		d.Fragment = rest[i+1:]
		rest = rest[:i]

		if d.Fragment == "" {
			return nil, errors.Wrap(ErrInvalidSyntax, "empty fragment")
		}
		if !validComponent(d.Fragment, "/?") {
			return nil, errors.Wrap(ErrInvalidSyntax, "disallowed character in fragment")
		}
	}

	if i := strings.IndexByte(rest, '?'); i >= 0 {
		d.Query = rest[i+1:]
		rest = rest[:i]

		if d.Query == "" {
			return nil, errors.Wrap(ErrInvalidSyntax, "empty query")
		}
		if !validComponent(d.Query, "/?") {
			return nil, errors.Wrap(ErrInvalidSyntax, "disallowed character in query")
		}
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		d.Path = rest[i:]
		rest = rest[:i]

		if !validComponent(d.Path[1:], "/") {
			return nil, errors.Wrap(ErrInvalidSyntax, "disallowed character in path")
		}
	}

	method, id, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, errors.Wrap(ErrInvalidSyntax, "missing method-specific-id")
	}

	if !validMethod(method) {
		return nil, errors.Wrapf(ErrInvalidSyntax, "invalid method name %q", method)
	}

	if !validMethodID(id) {
		return nil, errors.Wrapf(ErrInvalidSyntax, "invalid method-specific-id %q", id)
	}

	d.Method = method
	d.ID = id

	return d, nil
}

// String reassembles the identifier exactly as it was parsed.
func (d *DID) String() string {
	var b strings.Builder

	b.WriteString(scheme)
	b.WriteByte(':')
	b.WriteString(d.Method)
	b.WriteByte(':')
	b.WriteString(d.ID)
	b.WriteString(d.Path)

	if d.Query != "" {
		b.WriteByte('?')
		b.WriteString(d.Query)
	}
	if d.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(d.Fragment)
	}

	return b.String()
}

// Base returns the bare identifier without path, query or fragment.
func (d *DID) Base() string {
	return scheme + ":" + d.Method + ":" + d.ID
}

// method = 1*( %x61-7A / DIGIT )
func validMethod(m string) bool {
	if m == "" {
		return false
	}

	for i := 0; i < len(m); i++ {
		c := m[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}

// method-specific-id = *( *idchar ":" ) 1*idchar
// idchar = ALPHA / DIGIT / "." / "-" / "_" / pct-encoded
func validMethodID(id string) bool {
	if id == "" || strings.HasSuffix(id, ":") {
		return false
	}

	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_' || c == ':':
		case c == '%':
			if !validPctAt(id, i) {
				return false
			}
			i += 2
		default:
			return false
		}
	}

	return true
}

// validComponent accepts pchar plus any characters in extra, with
// percent-encoding validated.
func validComponent(s string, extra string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("-._~!$&'()*+,;=:@", c) >= 0:
		case strings.IndexByte(extra, c) >= 0:
		case c == '%':
			if !validPctAt(s, i) {
				return false
			}
			i += 2
		default:
			return false
		}
	}

	return true
}

func validPctAt(s string, i int) bool {
	return i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// go1.18 lacks strings.CutPrefix
func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
