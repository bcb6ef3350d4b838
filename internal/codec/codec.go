package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
)

// order is the byte order of every fixed width field. Settings files are
// host specific, like the platform settings directory they live in.
var order = binary.NativeEndian

// Marshal encodes a single tagged value.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single tagged value. Trailing bytes are ignored.
func Unmarshal(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes the kind tag of v followed by its payload.
func Encode(w io.Writer, v any) error {
	kind := KindOf(v)
	if kind == KindInvalid {
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}

	b := appendInt32(make([]byte, 0, 40), int32(kind))
	switch v := v.(type) {
	case bool:
		if v {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case int32:
		b = appendInt32(b, v)
	case int64:
		b = order.AppendUint64(b, uint64(v))
	case float32:
		b = order.AppendUint32(b, math.Float32bits(v))
	case float64:
		b = appendFloat64(b, v)
	case string:
		if len(v) > math.MaxInt32 {
			return fmt.Errorf("codec: string of %d bytes exceeds the length prefix", len(v))
		}
		b = appendInt32(b, int32(len(v)))
		b = append(b, v...)
	case geom.Point:
		b = appendInt32(appendInt32(b, v.X), v.Y)
	case geom.PointF:
		b = appendFloat64(appendFloat64(b, v.X), v.Y)
	case geom.Size:
		b = appendInt32(appendInt32(b, v.Width), v.Height)
	case geom.SizeF:
		b = appendFloat64(appendFloat64(b, v.Width), v.Height)
	case geom.Rect:
		b = appendInt32(appendInt32(appendInt32(appendInt32(b, v.X), v.Y), v.Width), v.Height)
	case geom.RectF:
		b = appendFloat64(appendFloat64(appendFloat64(appendFloat64(b, v.X), v.Y), v.Width), v.Height)
	case Color:
		b = appendFloat64(appendFloat64(appendFloat64(appendFloat64(b, v.R), v.G), v.B), v.A)
	}

	_, err := w.Write(b)
	return err
}

// Decode reads one tagged value. A short read is reported as
// io.ErrUnexpectedEOF; io.EOF is only returned when r was already exhausted
// before the tag.
func Decode(r io.Reader) (any, error) {
	d := decoder{r: r}

	tag, err := d.int32()
	if err != nil {
		if err == io.ErrUnexpectedEOF && d.n == 0 {
			return nil, io.EOF
		}
		return nil, err
	}

	kind := Kind(tag)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, tag)
	}
	return d.payload(kind)
}

// decoder reads fixed width fields and keeps track of how many bytes it has
// consumed.
type decoder struct {
	r   io.Reader
	buf [8]byte
	n   int64
}

func (d *decoder) read(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (d *decoder) int32() (int32, error) {
	if err := d.read(d.buf[:4]); err != nil {
		return 0, err
	}
	return int32(order.Uint32(d.buf[:4])), nil
}

func (d *decoder) int64() (int64, error) {
	if err := d.read(d.buf[:8]); err != nil {
		return 0, err
	}
	return int64(order.Uint64(d.buf[:8])), nil
}

func (d *decoder) float32() (float32, error) {
	if err := d.read(d.buf[:4]); err != nil {
		return 0, err
	}
	return math.Float32frombits(order.Uint32(d.buf[:4])), nil
}

func (d *decoder) float64() (float64, error) {
	if err := d.read(d.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(order.Uint64(d.buf[:8])), nil
}

func (d *decoder) string() (string, error) {
	n, err := d.int32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: string length %d", ErrNegativeLength, n)
	}
	if n == 0 {
		return "", nil
	}

	// Grow with the data actually present instead of trusting the prefix.
	var sb bytes.Buffer
	copied, err := io.CopyN(&sb, d.r, int64(n))
	d.n += copied
	if err != nil {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return sb.String(), nil
}

// int32s reads len(dst) consecutive int32 fields.
func (d *decoder) int32s(dst ...*int32) error {
	for _, p := range dst {
		v, err := d.int32()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// float64s reads len(dst) consecutive float64 fields.
func (d *decoder) float64s(dst ...*float64) error {
	for _, p := range dst {
		v, err := d.float64()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func (d *decoder) payload(kind Kind) (any, error) {
	switch kind {
	case KindBool:
		if err := d.read(d.buf[:1]); err != nil {
			return nil, err
		}
		return d.buf[0] != 0, nil
	case KindInt32:
		return orNil(d.int32())
	case KindInt64:
		return orNil(d.int64())
	case KindFloat32:
		return orNil(d.float32())
	case KindFloat64:
		return orNil(d.float64())
	case KindString:
		return orNil(d.string())
	case KindPoint:
		var p geom.Point
		return orNil(p, d.int32s(&p.X, &p.Y))
	case KindPointF:
		var p geom.PointF
		return orNil(p, d.float64s(&p.X, &p.Y))
	case KindSize:
		var s geom.Size
		return orNil(s, d.int32s(&s.Width, &s.Height))
	case KindSizeF:
		var s geom.SizeF
		return orNil(s, d.float64s(&s.Width, &s.Height))
	case KindRect:
		var r geom.Rect
		return orNil(r, d.int32s(&r.X, &r.Y, &r.Width, &r.Height))
	case KindRectF:
		var r geom.RectF
		return orNil(r, d.float64s(&r.X, &r.Y, &r.Width, &r.Height))
	case KindColor:
		var c Color
		return orNil(c, d.float64s(&c.R, &c.G, &c.B, &c.A))
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
}

// orNil boxes v unless err is set, so a failed decode never yields a zero
// value that looks legitimate.
func orNil[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func appendInt32(b []byte, v int32) []byte {
	return order.AppendUint32(b, uint32(v))
}

func appendFloat64(b []byte, v float64) []byte {
	return order.AppendUint64(b, math.Float64bits(v))
}
