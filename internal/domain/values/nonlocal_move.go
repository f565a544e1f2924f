package values

import (
	"fmt"
	"strings"
)

// NonlocalMove is the treatment of nonlocal pseudopotential terms in
// diffusion sampling.
type NonlocalMove int

const (
	// MoveUnset leaves the engine default in place.
	MoveUnset NonlocalMove = iota
	// MoveTmoves uses T-moves.
	MoveTmoves
	// MoveLocality uses the locality approximation.
	MoveLocality
)

// ParseNonlocalMove accepts the forms found in user input: nil, a bool
// (true = tmoves, false = locality), or one of "tmoves", "locality", "none".
func ParseNonlocalMove(v any) (NonlocalMove, error) {
	switch m := v.(type) {
	case nil:
		return MoveUnset, nil
	case NonlocalMove:
		return m, nil
	case bool:
		if m {
			return MoveTmoves, nil
		}
		return MoveLocality, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "tmoves", "tm", "yes":
			return MoveTmoves, nil
		case "locality", "la", "no":
			return MoveLocality, nil
		case "", "none":
			return MoveUnset, nil
		}
	}
	return MoveUnset, fmt.Errorf("invalid nonlocal move: %v", v)
}

// Suffix returns the label suffix for the move type: "_tm", "_la" or "".
func (m NonlocalMove) Suffix() string {
	switch m {
	case MoveTmoves:
		return "_tm"
	case MoveLocality:
		return "_la"
	default:
		return ""
	}
}

// String returns the string representation
func (m NonlocalMove) String() string {
	switch m {
	case MoveTmoves:
		return "tmoves"
	case MoveLocality:
		return "locality"
	default:
		return "none"
	}
}

// MarshalText renders the move by name in JSON and YAML output.
func (m NonlocalMove) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
