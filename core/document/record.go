package document

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// record is an ordered list of key/value pairs. Every object in the output
// document is written through a record so JSON and CBOR share one field order.
type record []entry

type entry struct {
	key   string
	value any
}

// MarshalJSON writes the record as a JSON object in entry order.
func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(e.key)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSON(e.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", e.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalCBOR writes the record as a CBOR map in entry order.
func (r record) MarshalCBOR() ([]byte, error) {
	em, err := cborEncMode()
	if err != nil {
		return nil, err
	}
	buf := appendMapHeader(nil, uint64(len(r)))
	for _, e := range r {
		k, err := em.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		v, err := em.Marshal(e.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", e.key, err)
		}
		buf = append(buf, k...)
		buf = append(buf, v...)
	}
	return buf, nil
}

// marshalJSON encodes v without HTML escaping so conditions such as
// "A > B" stay readable.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var cborEncMode = sync.OnceValues(func() (cbor.EncMode, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	return encMode, nil
})

// appendMapHeader appends a CBOR major type 5 header for a map of n pairs.
func appendMapHeader(buf []byte, n uint64) []byte {
	const major = 5 << 5
	switch {
	case n < 24:
		return append(buf, byte(major|n))
	case n <= 0xff:
		return append(buf, major|24, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buf, major|25), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buf, major|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buf, major|27), n)
	}
}
