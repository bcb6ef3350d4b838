// Package codec implements the typed binary format used for persisted settings.
//
// Every value is written as a 4 byte kind tag followed by a kind specific
// payload. Integers and floats use the host byte order, strings carry a 4 byte
// signed length prefix and composite kinds are a fixed sequence of fields.
// A settings file is an entry count followed by (key, value) pairs, see
// EncodeMap and DecodeMap.
package codec

import (
	"errors"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
)

// Kind identifies the type of a persisted value. The ordinals are part of the
// file format and must never be reordered.
type Kind int32

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindPoint
	KindPointF
	KindSize
	KindSizeF
	KindRect
	KindRectF
	KindColor
	KindInvalid
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindPoint:   "point",
	KindPointF:  "pointf",
	KindSize:    "size",
	KindSizeF:   "sizef",
	KindRect:    "rect",
	KindRectF:   "rectf",
	KindColor:   "color",
	KindInvalid: "invalid",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k.Valid() || k == KindInvalid {
		return kindNames[k]
	}
	return "invalid"
}

// Valid reports whether k is a kind that can be stored.
func (k Kind) Valid() bool {
	return k >= KindBool && k < KindInvalid
}

// ParseKind resolves a kind from its name as returned by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

var (
	// ErrInvalidKind is returned when a tag does not name a storable kind.
	ErrInvalidKind = errors.New("codec: invalid kind tag")
	// ErrNegativeLength is returned for a negative string length or entry count.
	ErrNegativeLength = errors.New("codec: negative length")
	// ErrUnsupportedValue is returned when encoding a Go value with no kind.
	ErrUnsupportedValue = errors.New("codec: unsupported value type")
	// ErrKeyNotString is returned when a container key is not tagged String.
	ErrKeyNotString = errors.New("codec: entry key is not a string")
)

// KindOf reports the kind used to persist v, or KindInvalid when v cannot be
// stored.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case string:
		return KindString
	case geom.Point:
		return KindPoint
	case geom.PointF:
		return KindPointF
	case geom.Size:
		return KindSize
	case geom.SizeF:
		return KindSizeF
	case geom.Rect:
		return KindRect
	case geom.RectF:
		return KindRectF
	case Color:
		return KindColor
	default:
		return KindInvalid
	}
}
