package ranking

// Entry is one key of a Tally with its accumulated count.
type Entry[K comparable] struct {
	Key   K
	Count int64
}

// Tally counts occurrences per key and remembers the order keys were first seen.
type Tally[K comparable] struct {
	keys   []K
	counts map[K]int64
}

// NewTally creates an empty tally.
func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{counts: make(map[K]int64)}
}

// Add increases the count of key by n.
func (t *Tally[K]) Add(key K, n int64) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key] += n
}

// Get returns the count of key and whether the key was ever added.
func (t *Tally[K]) Get(key K) (int64, bool) {
	n, ok := t.counts[key]
	return n, ok
}

// Len returns the number of distinct keys.
func (t *Tally[K]) Len() int {
	return len(t.keys)
}

// Entries returns every key with its count in first-seen order.
func (t *Tally[K]) Entries() []Entry[K] {
	out := make([]Entry[K], 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Entry[K]{Key: k, Count: t.counts[k]})
	}
	return out
}

// Top returns the n highest counts, ties in first-seen order.
func (t *Tally[K]) Top(n int) []Entry[K] {
	return TopN(t.Entries(), entryCount[K], n)
}

// Max returns the highest count, the earliest key winning ties.
func (t *Tally[K]) Max() (Entry[K], error) {
	return ArgMax(t.Entries(), entryCount[K])
}

func entryCount[K comparable](e Entry[K]) int64 {
	return e.Count
}
