package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
	"github.com/Gaurav-Gosain/winstate/internal/geom"
)

// parseValue converts a command line argument into the Go value stored for
// kind.
func parseValue(kind codec.Kind, s string) (any, error) {
	switch kind {
	case codec.KindBool:
		return strconv.ParseBool(s)
	case codec.KindInt32:
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	case codec.KindInt64:
		return strconv.ParseInt(s, 10, 64)
	case codec.KindFloat32:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case codec.KindFloat64:
		return strconv.ParseFloat(s, 64)
	case codec.KindString:
		return s, nil
	case codec.KindPoint:
		v, err := parseInts(s, ",", 2)
		if err != nil {
			return nil, err
		}
		return geom.Pt(v[0], v[1]), nil
	case codec.KindPointF:
		v, err := parseFloats(s, ",", 2)
		if err != nil {
			return nil, err
		}
		return geom.PointF{X: v[0], Y: v[1]}, nil
	case codec.KindSize:
		v, err := parseInts(s, "x", 2)
		if err != nil {
			return nil, err
		}
		return geom.Sz(v[0], v[1]), nil
	case codec.KindSizeF:
		v, err := parseFloats(s, "x", 2)
		if err != nil {
			return nil, err
		}
		return geom.SizeF{Width: v[0], Height: v[1]}, nil
	case codec.KindRect:
		v, err := parseInts(s, ",", 4)
		if err != nil {
			return nil, err
		}
		return geom.R(v[0], v[1], v[2], v[3]), nil
	case codec.KindRectF:
		v, err := parseFloats(s, ",", 4)
		if err != nil {
			return nil, err
		}
		return geom.RectF{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
	case codec.KindColor:
		return codec.ParseColor(s)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

func splitN(s, sep string, n int) ([]string, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values separated by %q, got %q", n, sep, s)
	}
	return parts, nil
}

func parseInts(s, sep string, n int) ([]int32, error) {
	parts, err := splitN(s, sep, n)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", p, err)
		}
		out[i] = int32(v)
	}
	return out, nil
}

func parseFloats(s, sep string, n int) ([]float64, error) {
	parts, err := splitN(s, sep, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// formatValue renders v in the same notation parseValue accepts.
func formatValue(v any) string {
	switch v := v.(type) {
	case geom.Point:
		return fmt.Sprintf("%d,%d", v.X, v.Y)
	case geom.PointF:
		return fmt.Sprintf("%g,%g", v.X, v.Y)
	case geom.Rect:
		return fmt.Sprintf("%d,%d,%d,%d", v.X, v.Y, v.Width, v.Height)
	case geom.RectF:
		return fmt.Sprintf("%g,%g,%g,%g", v.X, v.Y, v.Width, v.Height)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
