package pyhash

const (
	minTableSize = 8 // PySet_MINSIZE
	linearProbes = 9 // LINEAR_PROBES
	perturbShift = 5 // PERTURB_SHIFT
)

// Ordering replays CPython set insertion for a fixed key. It holds no other state and is safe
// for concurrent use.
type Ordering struct {
	key Key
}

// NewOrdering returns an Ordering hashing with key.
func NewOrdering(key Key) Ordering {
	return Ordering{key: key}
}

// Key returns the secret the ordering hashes with.
func (o Ordering) Key() Key { return o.key }

type slot struct {
	value string
	hash  int64
	used  bool
}

// Iterate returns the distinct values in the order CPython would enumerate a set built by
// adding values one by one.
func (o Ordering) Iterate(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	table := make([]slot, minTableSize)
	fill := 0
	for _, value := range values {
		if !insert(table, value, o.key.Hash(value), false) {
			continue
		}
		fill++
		if mask := len(table) - 1; fill*5 >= mask*3 {
			table = resize(table, fill)
		}
	}

	out := make([]string, 0, fill)
	for _, s := range table {
		if s.used {
			out = append(out, s.value)
		}
	}
	return out
}

// insert places value in the table, reporting false when it is already present. Each probe
// checks a run of adjacent slots before jumping, and perturb is shifted before every jump.
// A clean insert skips the equality check, as when rehashing into a fresh table.
func insert(table []slot, value string, hash int64, clean bool) bool {
	mask := uint64(len(table) - 1)
	perturb := uint64(hash)
	idx := uint64(hash) & mask
	for {
		probes := 0
		if idx+linearProbes <= mask {
			probes = linearProbes
		}
		for j := idx; j <= idx+uint64(probes); j++ {
			s := &table[j]
			if !s.used {
				*s = slot{value: value, hash: hash, used: true}
				return true
			}
			if !clean && s.hash == hash && s.value == value {
				return false
			}
		}
		perturb >>= perturbShift
		idx = (idx*5 + 1 + perturb) & mask
	}
}

// resize rehashes into the smallest table larger than four times the used count, or twice
// it for very large sets.
func resize(table []slot, used int) []slot {
	minUsed := used * 4
	if used > 50000 {
		minUsed = used * 2
	}
	size := minTableSize
	for size <= minUsed {
		size <<= 1
	}

	resized := make([]slot, size)
	for _, s := range table {
		if s.used {
			insert(resized, s.value, s.hash, true)
		}
	}
	return resized
}
