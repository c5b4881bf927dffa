package pair

// Canonical orders two user ids so that the first is always the smaller one.
// Every match row and every unmatch lookup must go through this function.
func Canonical(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the id in (a, b) that is not self.
func Other(a, b, self uint64) uint64 {
	if a == self {
		return b
	}
	return a
}

// Contains reports whether id is one of a, b.
func Contains(a, b, id uint64) bool { return id == a || id == b }
