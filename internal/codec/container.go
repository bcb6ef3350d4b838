package codec

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// EncodeMap writes a settings container: an int32 entry count followed by one
// (String tagged key, tagged value) pair per entry, in map iteration order.
func EncodeMap(w io.Writer, m map[string]any) error {
	if len(m) > math.MaxInt32 {
		return fmt.Errorf("codec: %d entries exceed the container count", len(m))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(appendInt32(nil, int32(len(m)))); err != nil {
		return err
	}
	for key, value := range m {
		if err := Encode(bw, key); err != nil {
			return fmt.Errorf("encode key %q: %w", key, err)
		}
		if err := Encode(bw, value); err != nil {
			return fmt.Errorf("encode value of %q: %w", key, err)
		}
	}
	return bw.Flush()
}

// DecodeMap reads a settings container written by EncodeMap.
//
// Decoding is all or nothing: a short read, an unknown tag, a negative length
// or a key that is not a string discards everything read so far and returns a
// nil map with the error. Callers treat that as "no settings".
func DecodeMap(r io.Reader) (map[string]any, error) {
	d := decoder{r: bufio.NewReader(r)}

	count, err := d.int32()
	if err != nil {
		return nil, fmt.Errorf("read entry count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: entry count %d", ErrNegativeLength, count)
	}

	m := make(map[string]any, min(int(count), 64))
	for i := range int(count) {
		key, err := Decode(d.r)
		if err != nil {
			return nil, fmt.Errorf("entry %d key: %w", i, unexpected(err))
		}
		name, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: %w (%s)", i, ErrKeyNotString, KindOf(key))
		}

		value, err := Decode(d.r)
		if err != nil {
			return nil, fmt.Errorf("entry %d %q: %w", i, name, unexpected(err))
		}
		m[name] = value
	}
	return m, nil
}

// unexpected turns a clean EOF between entries into a short read, since the
// entry count promised more data.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
