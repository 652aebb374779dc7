// Package orderedmap provides a map that preserves the insertion order of
// its elements.
package orderedmap

// Map is a map datastructure that allows accessing its elements in
// insertion order.
type Map[K comparable, V any] struct {
	order   []K
	m       map[K]V
	zeroval V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: map[K]V{},
	}
}

// InsertIfNotExist adds val to the map if key does not exist.
func (m *Map[K, V]) InsertIfNotExist(key K, val V) (added bool) {
	if _, exist := m.m[key]; exist {
		return false
	}

	m.order = append(m.order, key)
	m.m[key] = val

	return true
}

// Get returns the value for the given key.
// If the key does not exist, the zero value is returned.
func (m *Map[K, V]) Get(key K) V {
	v, exist := m.m[key]
	if !exist {
		return m.zeroval
	}

	return v
}

// Contains returns true if the key exists in the map.
func (m *Map[K, V]) Contains(key K) bool {
	_, exist := m.m[key]
	return exist
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int {
	return len(m.order)
}

// Foreach iterates through the map in insertion order.
// When fn returns false the iteration is aborted.
func (m *Map[K, V]) Foreach(fn func(K, V) bool) {
	for _, key := range m.order {
		if !fn(key, m.m[key]) {
			return
		}
	}
}

// AsSlice returns a new slice containing the values of the map in insertion
// order.
func (m *Map[K, V]) AsSlice() []V {
	result := make([]V, 0, len(m.order))

	for _, key := range m.order {
		result = append(result, m.m[key])
	}

	return result
}
