package termstore

import (
	"fmt"
	"time"

	"github.com/aleksaelezovic/termgo/pkg/rdf"
)

// LiteralParser converts non-string native values into literals. Results are
// handed back to the caller as-is, outside the interning tables.
type LiteralParser interface {
	ParseLiteral(v any) (*rdf.Literal, error)
}

// NativeLiteralParser maps common Go values onto typed literals.
type NativeLiteralParser struct{}

func (NativeLiteralParser) ParseLiteral(v any) (*rdf.Literal, error) {
	switch t := v.(type) {
	case int:
		return rdf.NewIntegerLiteral(int64(t)), nil
	case int64:
		return rdf.NewIntegerLiteral(t), nil
	case float64:
		return rdf.NewDoubleLiteral(t), nil
	case bool:
		return rdf.NewBooleanLiteral(t), nil
	case time.Time:
		return rdf.NewDateTimeLiteral(t), nil
	default:
		return nil, fmt.Errorf("cannot parse %T as a literal: %w", v, ErrInvalidArgument)
	}
}
