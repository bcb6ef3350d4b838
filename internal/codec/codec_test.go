package codec_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
	"github.com/Gaurav-Gosain/winstate/internal/geom"
)

// fileBuilder assembles raw settings bytes the way another writer would, so
// the tests do not depend on the encoder they are checking.
type fileBuilder struct {
	bytes.Buffer
}

func (b *fileBuilder) i32(v int32) *fileBuilder {
	_ = binary.Write(&b.Buffer, binary.NativeEndian, v)
	return b
}

func (b *fileBuilder) str(s string) *fileBuilder {
	b.i32(int32(codec.KindString)).i32(int32(len(s)))
	b.WriteString(s)
	return b
}

// =============================================================================
// Single Value Tests
// =============================================================================

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  codec.Kind
	}{
		{"true", true, codec.KindBool},
		{"false", false, codec.KindBool},
		{"int32 max", int32(math.MaxInt32), codec.KindInt32},
		{"int32 min", int32(math.MinInt32), codec.KindInt32},
		{"int32 zero", int32(0), codec.KindInt32},
		{"int64 max", int64(math.MaxInt64), codec.KindInt64},
		{"int64 negative", int64(-42), codec.KindInt64},
		{"float32", float32(3.25), codec.KindFloat32},
		{"float32 smallest", float32(math.SmallestNonzeroFloat32), codec.KindFloat32},
		{"float64", -1234.5678, codec.KindFloat64},
		{"float64 max", math.MaxFloat64, codec.KindFloat64},
		{"empty string", "", codec.KindString},
		{"string", "RootView.Position", codec.KindString},
		{"utf8 string", "fenêtre ☐", codec.KindString},
		{"point", geom.Pt(-32000, 17), codec.KindPoint},
		{"pointf", geom.PointF{X: 0.5, Y: -1.25}, codec.KindPointF},
		{"size", geom.Sz(1920, 1080), codec.KindSize},
		{"sizef", geom.SizeF{Width: 1.5, Height: 2.5}, codec.KindSizeF},
		{"rect", geom.R(-10, 20, 800, 600), codec.KindRect},
		{"zero rect", geom.Rect{}, codec.KindRect},
		{"rectf", geom.RectF{X: 1, Y: 2, Width: 3, Height: 4}, codec.KindRectF},
		{"color", codec.Color{R: 1, G: 0.5, B: 0.25, A: 0.75}, codec.KindColor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, codec.KindOf(tc.value))

			data, err := codec.Marshal(tc.value)
			require.NoError(t, err)

			got, err := codec.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	data, err := codec.Marshal(geom.R(1, 2, 3, 4))
	require.NoError(t, err)
	require.Len(t, data, 4+4*4)

	fields := make([]int32, 5)
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.NativeEndian, fields))
	assert.Equal(t, []int32{int32(codec.KindRect), 1, 2, 3, 4}, fields)

	data, err = codec.Marshal(true)
	require.NoError(t, err)
	assert.Len(t, data, 5, "bool payload is a single byte")

	data, err = codec.Marshal("")
	require.NoError(t, err)
	assert.Len(t, data, 8, "empty string has a zero length and no terminator")
}

func TestEncodeUnsupported(t *testing.T) {
	for _, v := range []any{nil, 12, uint32(1), []byte("x"), struct{}{}} {
		_, err := codec.Marshal(v)
		assert.ErrorIs(t, err, codec.ErrUnsupportedValue, "%T", v)
		assert.Equal(t, codec.KindInvalid, codec.KindOf(v))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.EOF},
		{"short tag", []byte{1, 0}, io.ErrUnexpectedEOF},
		{"invalid tag", new(fileBuilder).i32(int32(codec.KindInvalid)).Bytes(), codec.ErrInvalidKind},
		{"negative tag", new(fileBuilder).i32(-1).Bytes(), codec.ErrInvalidKind},
		{"short int32", append(new(fileBuilder).i32(int32(codec.KindInt32)).Bytes(), 1, 2), io.ErrUnexpectedEOF},
		{"missing bool", new(fileBuilder).i32(int32(codec.KindBool)).Bytes(), io.ErrUnexpectedEOF},
		{"negative length", new(fileBuilder).i32(int32(codec.KindString)).i32(-5).Bytes(), codec.ErrNegativeLength},
		{"short string", append(new(fileBuilder).i32(int32(codec.KindString)).i32(10).Bytes(), "abc"...), io.ErrUnexpectedEOF},
		{"huge length", new(fileBuilder).i32(int32(codec.KindString)).i32(math.MaxInt32).Bytes(), io.ErrUnexpectedEOF},
		{"short rect", new(fileBuilder).i32(int32(codec.KindRect)).i32(1).i32(2).Bytes(), io.ErrUnexpectedEOF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := codec.Unmarshal(tc.data)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, v)
		})
	}
}

func TestDecodeNonZeroBoolIsTrue(t *testing.T) {
	data := append(new(fileBuilder).i32(int32(codec.KindBool)).Bytes(), 7)
	v, err := codec.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

// =============================================================================
// Container Tests
// =============================================================================

func TestDecodeMapScenario(t *testing.T) {
	b := new(fileBuilder).i32(2)
	b.str("RootView.Maximized").i32(int32(codec.KindBool))
	b.WriteByte(1)
	b.str("RootView.Version").i32(int32(codec.KindInt32)).i32(2)

	m, err := codec.DecodeMap(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"RootView.Maximized": true,
		"RootView.Version":   int32(2),
	}, m)
}

func TestMapRoundTrip(t *testing.T) {
	in := map[string]any{
		"RootView.Position":    geom.Pt(120, -40),
		"RootView.Size":        geom.Sz(1280, 720),
		"RootView.Maximized":   false,
		"RootView.FullScreen":  true,
		"RootView.Persistence": int32(15),
		"RootView.Version":     int32(2),
		"Editor.Font":          "Iosevka",
		"Editor.Zoom":          1.25,
		"Editor.Accent":        codec.Opaque(0.2, 0.4, 0.6),
		"":                     "",
	}

	var buf bytes.Buffer
	require.NoError(t, codec.EncodeMap(&buf, in))

	out, err := codec.DecodeMap(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMapEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.EncodeMap(&buf, nil))
	assert.Equal(t, 4, buf.Len())

	m, err := codec.DecodeMap(&buf)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestMapEncodeRejectsUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := codec.EncodeMap(&buf, map[string]any{"bad": uint8(1)})
	assert.ErrorIs(t, err, codec.ErrUnsupportedValue)
}

func TestDecodeMapDiscardsPartialData(t *testing.T) {
	valid := func() *fileBuilder {
		b := new(fileBuilder).i32(3)
		b.str("a").i32(int32(codec.KindInt32)).i32(1)
		b.str("b").i32(int32(codec.KindInt32)).i32(2)
		return b
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty file", nil, io.ErrUnexpectedEOF},
		{"negative count", new(fileBuilder).i32(-1).Bytes(), codec.ErrNegativeLength},
		{"missing third entry", valid().Bytes(), io.ErrUnexpectedEOF},
		{"truncated third value", append(valid().str("c").i32(int32(codec.KindInt64)).Bytes(), 0, 0), io.ErrUnexpectedEOF},
		{"bad third tag", valid().str("c").i32(99).Bytes(), codec.ErrInvalidKind},
		{"key not a string", valid().i32(int32(codec.KindInt32)).i32(5).Bytes(), codec.ErrKeyNotString},
		{"negative key length", valid().i32(int32(codec.KindString)).i32(-3).Bytes(), codec.ErrNegativeLength},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := codec.DecodeMap(bytes.NewReader(tc.data))
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, m, "no partially populated map")
		})
	}
}

func TestDecodeMapIgnoresTrailingBytes(t *testing.T) {
	b := new(fileBuilder).i32(1)
	b.str("k").i32(int32(codec.KindInt32)).i32(9)
	b.WriteString("garbage")

	m, err := codec.DecodeMap(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": int32(9)}, m)
}

// =============================================================================
// Kind and Color Tests
// =============================================================================

func TestParseKind(t *testing.T) {
	for k := codec.KindBool; k < codec.KindInvalid; k++ {
		got, ok := codec.ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	_, ok := codec.ParseKind("invalid")
	assert.False(t, ok)
	_, ok = codec.ParseKind("uint8")
	assert.False(t, ok)
	assert.Equal(t, "invalid", codec.Kind(42).String())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff0000", "#ff0000"},
		{"#0f0", "#00ff00"},
		{"  #336699  ", "#336699"},
		{"#11223380", "#11223380"},
		{"#112233ff", "#112233"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			c, err := codec.ParseColor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Hex())
		})
	}

	for _, bad := range []string{"", "#12", "#12345", "#gggggg", "#112233zz"} {
		_, err := codec.ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
