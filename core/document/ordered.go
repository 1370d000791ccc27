package document

// OrderedMap is a string-keyed map that remembers first-insertion order.
// Setting an existing key replaces its value in place; the key keeps its
// original position. The zero value is ready to use.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// Set stores v under key.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

func (m OrderedMap[V]) record() record {
	r := make(record, 0, len(m.keys))
	for _, k := range m.keys {
		r = append(r, entry{key: k, value: m.values[k]})
	}
	return r
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	return m.record().MarshalJSON()
}

// MarshalCBOR writes the map as a CBOR map in insertion order.
func (m OrderedMap[V]) MarshalCBOR() ([]byte, error) {
	return m.record().MarshalCBOR()
}
