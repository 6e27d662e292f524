// Package gatesimerr defines the typed error taxonomy surfaced by the
// netlist loader, the port configuration layer, and port I/O.
package gatesimerr

import "fmt"

// Kind identifies which error taxonomy entry an Error belongs to.
type Kind int

const (
	// NetlistParse covers syntactic or structural problems in the input JSON.
	NetlistParse Kind = iota
	// UnknownCellType covers a cell instance referencing a type that is
	// neither in the library nor among the document's modules.
	UnknownCellType
	// MultiDriver covers a net with more than one writer.
	MultiDriver
	// CombinationalCycle covers a cycle detected during topological sort.
	CombinationalCycle
	// PortWidthMismatch covers a declared port width differing from its
	// resolved bit list, or from a facade's port configuration.
	PortWidthMismatch
	// PinMismatch covers a cell instance whose pins don't match its
	// library (or callee module) declaration.
	PinMismatch
	// BadConstantLiteral covers a bit entry that is neither an integer
	// >= 2 nor the literal "0"/"1".
	BadConstantLiteral
	// ShapeMismatch covers a port write/read with the wrong
	// rows/cols/element width.
	ShapeMismatch
	// ValueOutOfRange covers an integer that does not fit in the
	// declared signed/unsigned W-bit element.
	ValueOutOfRange
)

func (k Kind) String() string {
	switch k {
	case NetlistParse:
		return "NetlistParse"
	case UnknownCellType:
		return "UnknownCellType"
	case MultiDriver:
		return "MultiDriver"
	case CombinationalCycle:
		return "CombinationalCycle"
	case PortWidthMismatch:
		return "PortWidthMismatch"
	case PinMismatch:
		return "PinMismatch"
	case BadConstantLiteral:
		return "BadConstantLiteral"
	case ShapeMismatch:
		return "ShapeMismatch"
	case ValueOutOfRange:
		return "ValueOutOfRange"
	default:
		return "Unknown"
	}
}

// Error is a gatesim error carrying a Kind and the offending identifier.
type Error struct {
	Kind   Kind
	Ident  string // the offending identifier (module, cell, port, net id...)
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Ident)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Ident, e.Detail)
}

// New builds an *Error for the given kind.
func New(kind Kind, ident, detail string) *Error {
	return &Error{Kind: kind, Ident: ident, Detail: detail}
}

// Newf builds an *Error with a formatted detail message.
func Newf(kind Kind, ident, format string, args ...any) *Error {
	return &Error{Kind: kind, Ident: ident, Detail: fmt.Sprintf(format, args...)}
}
