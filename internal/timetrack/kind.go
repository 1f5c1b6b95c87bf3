package timetrack

import (
	"errors"
	"fmt"
)

// ErrInvalidClassification is returned when a Kind other than Working or
// Tracked reaches ingestion.
var ErrInvalidClassification = errors.New("invalid classification")

// Kind classifies a calendar as expected working time or tracked time.
type Kind int

const (
	// Working marks events describing the time that should be worked.
	Working Kind = iota + 1
	// Tracked marks events describing the time that was actually worked.
	Tracked
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Working, Tracked:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case Working:
		return "working"
	case Tracked:
		return "tracked"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClassification, int(k))
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

// ParseKind parses "working" or "tracked".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "working":
		return Working, nil
	case "tracked":
		return Tracked, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q, expected one of %s, %s", ErrInvalidClassification, s, Working, Tracked)
}
