// Package encoding frames interned terms and quads as binary records for the
// storage layer. Records are a type byte followed by big-endian
// length-prefixed strings; identities and counters are 8-byte big-endian.
package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/aleksaelezovic/termgo/pkg/rdf"
)

// EncodeID encodes an identity as a fixed-width big-endian key.
func EncodeID(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id)) // #nosec G115 - intentional bit-pattern conversion for binary encoding
	return buf
}

// DecodeID decodes an identity key.
func DecodeID(buf []byte) (int64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("identity key must be 8 bytes, got %d", len(buf))
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

// EncodeTerm encodes a named node, blank node or literal record. Quads are
// framed separately via EncodeQuadComponents.
func EncodeTerm(t rdf.Term) ([]byte, error) {
	switch v := t.(type) {
	case *rdf.NamedNode:
		return appendString([]byte{byte(rdf.TermTypeNamedNode)}, v.IRI), nil
	case *rdf.BlankNode:
		return appendString([]byte{byte(rdf.TermTypeBlankNode)}, v.ID), nil
	case *rdf.Literal:
		datatype := ""
		if v.Datatype != nil {
			datatype = v.Datatype.IRI
		}
		buf := appendString([]byte{byte(rdf.TermTypeLiteral)}, v.Value)
		buf = appendString(buf, v.Language)
		return appendString(buf, datatype), nil
	default:
		return nil, fmt.Errorf("cannot encode term of type %T", t)
	}
}

// DecodeTerm decodes a term record into a fresh, uninterned value.
func DecodeTerm(buf []byte) (rdf.Term, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("empty term record")
	}
	kind := rdf.TermType(buf[0])
	rest := buf[1:]

	switch kind {
	case rdf.TermTypeNamedNode:
		iri, _, err := readString(rest)
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(iri), nil
	case rdf.TermTypeBlankNode:
		id, _, err := readString(rest)
		if err != nil {
			return nil, err
		}
		return rdf.NewBlankNode(id), nil
	case rdf.TermTypeLiteral:
		value, rest, err := readString(rest)
		if err != nil {
			return nil, err
		}
		language, rest, err := readString(rest)
		if err != nil {
			return nil, err
		}
		datatype, _, err := readString(rest)
		if err != nil {
			return nil, err
		}
		lit := &rdf.Literal{Value: value, Language: language}
		if datatype != "" {
			lit.Datatype = rdf.NewNamedNode(datatype)
		}
		return lit, nil
	default:
		return nil, fmt.Errorf("unknown term record type: %d", kind)
	}
}

// EncodeQuadComponents encodes the four component identities of a quad.
func EncodeQuadComponents(s, p, o, g int64) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, EncodeID(s)...)
	buf = append(buf, EncodeID(p)...)
	buf = append(buf, EncodeID(o)...)
	buf = append(buf, EncodeID(g)...)
	return buf
}

// DecodeQuadComponents decodes the four component identities of a quad.
func DecodeQuadComponents(buf []byte) (s, p, o, g int64, err error) {
	if len(buf) != 32 {
		return 0, 0, 0, 0, fmt.Errorf("quad record must be 32 bytes, got %d", len(buf))
	}
	s, _ = DecodeID(buf[0:8])
	p, _ = DecodeID(buf[8:16])
	o, _ = DecodeID(buf[16:24])
	g, _ = DecodeID(buf[24:32])
	return s, p, o, g, nil
}

// EncodeCounter encodes a counter or configuration value for the meta table.
func EncodeCounter(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DecodeCounter decodes a meta table value.
func DecodeCounter(buf []byte) (uint64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("counter value must be 8 bytes, got %d", len(buf))
	}
	return binary.BigEndian.Uint64(buf), nil
}

func appendString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s))) // #nosec G115 - term strings never approach 4 GiB
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func readString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("truncated string length")
	}
	n := binary.BigEndian.Uint32(buf[0:4])
	rest := buf[4:]
	if uint32(len(rest)) < n {
		return "", nil, fmt.Errorf("truncated string: want %d bytes, have %d", n, len(rest))
	}
	return string(rest[:n]), rest[n:], nil
}
