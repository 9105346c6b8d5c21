package quiztree

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a bad kind, malformed seed data or an illegal
// tree operation.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind is the category of a question node. The zero value is not a valid
// kind, so an unset Kind is caught at construction.
type Kind uint8

const (
	// KindBasic is a seed question derived from source content.
	KindBasic Kind = iota + 1
	// KindRefinement is a follow-up grafted under a basic question.
	KindRefinement
	// KindConcept is reserved. It is accepted everywhere a kind is
	// validated but no behavior depends on it.
	KindConcept
)

var kindNames = map[Kind]string{
	KindBasic:      "basic",
	KindRefinement: "refinement",
	KindConcept:    "concept",
}

// ParseKind maps a kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown question kind %q", ErrInvalidArgument, s)
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: cannot marshal %s", ErrInvalidArgument, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
