// internal/format/spec.go
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// lenToken introduces a length-prefixed text field in a descriptor
const lenToken = "len"

// Kind distinguishes fixed-width numeric fields from length-prefixed text fields
type Kind int

const (
	KindFixed Kind = iota
	KindText
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Field is one wire slot of a record.
// For KindFixed, Width is the size of the integer in bytes.
// For KindText, Width is the size of the length prefix; the text itself is
// length*2 bytes (UTF-16 code units).
type Field struct {
	Kind  Kind
	Width int
}

// Spec describes the layout of every record of a data file
type Spec struct {
	// IDIndex is the index in Fields of the record's numeric key
	IDIndex int

	// CountWidth is the size in bytes of the leading record count
	CountWidth int

	// Fields in wire order
	Fields []Field
}

// ParseSpec parses a descriptor of the form "idIndex countWidth field1 field2 ...",
// where each field is "1", "2", "4", "8" or the pair "len <width>".
func ParseSpec(descriptor string) (*Spec, error) {
	tokens := strings.Fields(descriptor)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: %q: need id index and count width", ErrMalformedFormat, descriptor)
	}

	idIndex, err := strconv.Atoi(tokens[0])
	if err != nil || idIndex < 0 {
		return nil, fmt.Errorf("%w: %q: bad id index %q", ErrMalformedFormat, descriptor, tokens[0])
	}

	countWidth, err := parseWidth(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: count width: %v", ErrMalformedFormat, descriptor, err)
	}

	spec := &Spec{
		IDIndex:    idIndex,
		CountWidth: countWidth,
	}

	for i := 2; i < len(tokens); i++ {
		if tokens[i] == lenToken {
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w: %q: %q without width", ErrMalformedFormat, descriptor, lenToken)
			}
			i++
			w, err := parseWidth(tokens[i])
			if err != nil {
				return nil, fmt.Errorf("%w: %q: field %d: %v", ErrMalformedFormat, descriptor, len(spec.Fields), err)
			}
			spec.Fields = append(spec.Fields, Field{Kind: KindText, Width: w})
			continue
		}

		w, err := parseWidth(tokens[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: field %d: %v", ErrMalformedFormat, descriptor, len(spec.Fields), err)
		}
		spec.Fields = append(spec.Fields, Field{Kind: KindFixed, Width: w})
	}

	if idIndex >= len(spec.Fields) {
		return nil, fmt.Errorf("%w: %q: id index %d out of range (%d fields)", ErrMalformedFormat, descriptor, idIndex, len(spec.Fields))
	}
	if spec.Fields[idIndex].Kind != KindFixed {
		return nil, fmt.Errorf("%w: %q: id field %d is not numeric", ErrMalformedFormat, descriptor, idIndex)
	}

	return spec, nil
}

// TextFields returns the number of length-prefixed text fields
func (s *Spec) TextFields() int {
	n := 0
	for _, f := range s.Fields {
		if f.Kind == KindText {
			n++
		}
	}
	return n
}

// String renders the spec back into descriptor form
func (s *Spec) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d", s.IDIndex, s.CountWidth)
	for _, f := range s.Fields {
		if f.Kind == KindText {
			sb.WriteString(" " + lenToken)
		}
		fmt.Fprintf(&sb, " %d", f.Width)
	}
	return sb.String()
}

func parseWidth(token string) (int, error) {
	switch token {
	case "1":
		return 1, nil
	case "2":
		return 2, nil
	case "4":
		return 4, nil
	case "8":
		return 8, nil
	default:
		return 0, fmt.Errorf("width %q not one of 1, 2, 4, 8", token)
	}
}
