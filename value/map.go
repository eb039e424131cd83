package value

// mapMinCapacity is the smallest table size a Map ever allocates; below
// this the resize arithmetic (capacity/4 load factor comparisons) stops
// making sense.
const mapMinCapacity = 8

// mapLoadFactor is the maximum live-entry occupancy before a set triggers
// a doubling resize.
const mapLoadFactor = 0.75

// mapShrinkFactor controls when a removal triggers a halving resize:
// capacity is halved once capacity/mapShrinkFactor > live-count/mapLoadFactor.
const mapShrinkFactor = 4

// entry states, per the table's open-addressing scheme:
//   - empty:     Key.IsUndefined() && !tombstone
//   - tombstone: Key.IsUndefined() && tombstone
//   - live:      anything else
type mapEntry struct {
	Key       Value
	Val       Value
	tombstone bool
}

func (e *mapEntry) isEmpty() bool     { return e.Key.IsUndefined() && !e.tombstone }
func (e *mapEntry) isTombstone() bool { return e.Key.IsUndefined() && e.tombstone }
func (e *mapEntry) isLive() bool      { return !e.Key.IsUndefined() }

// Map is an open-addressed hash table with linear probing and tombstone
// deletion, keyed on any Hashable Value.
type Map struct {
	Header
	entries []mapEntry
	count   int // live entries
}

// NewMap returns an empty map with a minimum-sized table.
func NewMap() *Map {
	return &Map{Header: Header{Type: TMap}, entries: make([]mapEntry, mapMinCapacity)}
}

// Len returns the number of live entries.
func (m *Map) Len() int { return m.count }

// Cap returns the current table capacity (including empty and tombstone
// slots).
func (m *Map) Cap() int { return len(m.entries) }

// find probes starting at hash(key) mod capacity, advancing linearly. It
// returns the live entry on a hit. On a miss it returns the first
// tombstone seen (so a subsequent set reuses it) or, if none was seen, the
// empty slot where the probe stopped — the tie-break the spec calls out
// for an all-tombstone probe sequence is handled by "first tombstone seen
// wins", which this loop implements by only recording the first one.
func (m *Map) find(key Value) (idx int, hit bool) {
	cap := len(m.entries)
	i := int(Hash(key) % uint32(cap))
	tombstoneIdx := -1
	for n := 0; n < cap; n++ {
		e := &m.entries[i]
		switch {
		case e.isEmpty():
			if tombstoneIdx >= 0 {
				return tombstoneIdx, false
			}
			return i, false
		case e.isTombstone():
			if tombstoneIdx < 0 {
				tombstoneIdx = i
			}
		case IsEqual(e.Key, key):
			return i, true
		}
		i = (i + 1) % cap
	}
	// A full cycle without an empty slot: the load factor keeps live
	// entries below capacity, so at least one tombstone was seen.
	return tombstoneIdx, false
}

// Get returns the value for key and whether it was found.
func (m *Map) Get(key Value) (Value, bool) {
	if len(m.entries) == 0 {
		return Value{}, false
	}
	idx, hit := m.find(key)
	if !hit {
		return Value{}, false
	}
	return m.entries[idx].Val, true
}

// Set inserts or replaces the value for key. The table resizes (doubling)
// before the insert if the new count would cross mapLoadFactor.
func (m *Map) Set(key, val Value) {
	if float64(m.count+1) > float64(len(m.entries))*mapLoadFactor {
		m.resize(len(m.entries) * 2)
	}
	idx, hit := m.find(key)
	e := &m.entries[idx]
	wasNew := !hit
	e.Key, e.Val, e.tombstone = key, val, false
	if wasNew {
		m.count++
	}
}

// Remove deletes key if present, tombstoning its slot. If the removal
// drops the map to zero live entries the table is cleared back to minimum
// capacity; otherwise it halves once capacity/mapShrinkFactor exceeds
// count/mapLoadFactor.
func (m *Map) Remove(key Value) (removed Value, ok bool) {
	idx, hit := m.find(key)
	if !hit {
		return Value{}, false
	}
	e := &m.entries[idx]
	removed = e.Val
	e.Key, e.Val, e.tombstone = UndefinedValue, TrueValue, true
	m.count--

	if m.count == 0 {
		m.entries = make([]mapEntry, mapMinCapacity)
	} else if cap := len(m.entries); float64(cap)/float64(mapShrinkFactor) > float64(m.count)/mapLoadFactor {
		newCap := cap / 2
		if newCap < mapMinCapacity {
			newCap = mapMinCapacity
		}
		if newCap < cap {
			m.resize(newCap)
		}
	}
	return removed, true
}

func (m *Map) resize(newCap int) {
	if newCap < mapMinCapacity {
		newCap = mapMinCapacity
	}
	old := m.entries
	m.entries = make([]mapEntry, newCap)
	for _, e := range old {
		if !e.isLive() {
			continue
		}
		idx, _ := m.find(e.Key)
		m.entries[idx] = mapEntry{Key: e.Key, Val: e.Val}
	}
}

// Each calls fn for every live entry, in table order. fn must not mutate
// the map.
func (m *Map) Each(fn func(k, v Value)) {
	for i := range m.entries {
		if e := &m.entries[i]; e.isLive() {
			fn(e.Key, e.Val)
		}
	}
}
