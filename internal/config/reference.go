package config

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Reference identifies an annotation type.
//
// Textual forms:
//
//	"pkg/path".Name
//	pkg/path.Name
//	Name
//
// The last form has an empty Package and is qualified later with the package
// the annotation is written in.
type Reference struct {
	Package string
	Name    string
}

// ParseReference parses the textual form of a reference.
func ParseReference(s string) (Reference, error) {
	var r Reference
	if err := r.UnmarshalText([]byte(s)); err != nil {
		return Reference{}, err
	}

	return r, nil
}

// FQN returns the fully qualified name, i.e. pkg/path.Name.
func (r Reference) FQN() string {
	if r.Package == "" {
		return r.Name
	}

	return r.Package + "." + r.Name
}

func (r Reference) String() string {
	return r.FQN()
}

var (
	_ encoding.TextUnmarshaler = (*Reference)(nil)
	_ encoding.TextMarshaler   = Reference{}
)

func (r *Reference) UnmarshalText(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" {
		return errors.New("empty reference")
	}

	var pkg, name string
	if strings.HasPrefix(s, `"`) {
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return fmt.Errorf("unterminated quoted package in reference: %q", s)
		}
		end++

		pkg = s[1:end]
		if pkg == "" {
			return fmt.Errorf("package cannot be empty in reference: %q", s)
		}

		rest := s[end+1:]
		if !strings.HasPrefix(rest, ".") {
			return fmt.Errorf("reference must contain a name after the package: %q", s)
		}
		name = rest[1:]
	} else {
		// The name starts after the last dot following the last slash, so that
		// dotted hosts like example.com stay in the package part.
		slash := strings.LastIndexByte(s, '/')
		dot := strings.LastIndexByte(s[slash+1:], '.')
		if dot < 0 {
			if slash >= 0 {
				return fmt.Errorf("reference must contain a name after the package: %q", s)
			}
			name = s
		} else {
			dot += slash + 1
			pkg = s[:dot]
			name = s[dot+1:]
			if pkg == "" {
				return fmt.Errorf("package cannot be empty in reference: %q", s)
			}
		}
	}

	if !isIdent(name) {
		return fmt.Errorf("invalid identifier %q in reference %q", name, s)
	}

	r.Package = pkg
	r.Name = name
	return nil
}

func (r Reference) MarshalText() ([]byte, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("cannot marshal Reference: empty Name")
	}

	if r.Package == "" {
		return []byte(r.Name), nil
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(r.Package)
	b.WriteByte('"')
	b.WriteByte('.')
	b.WriteString(r.Name)

	return []byte(b.String()), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
