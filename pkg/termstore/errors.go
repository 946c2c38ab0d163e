package termstore

import "errors"

var (
	// ErrInvalidArgument reports a term description with a wrong-shaped
	// field, such as a non-string node value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingDatatype reports a literal that reached construction without
	// a resolvable datatype. The defaulting rules make this unreachable for
	// ordinary inputs; it exists so a broken caller fails loudly instead of
	// interning an invalid term.
	ErrMissingDatatype = errors.New("literal datatype missing")
)
