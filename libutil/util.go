package libutil

// Releaser frees resources that are not managed by the garbage collector.
type Releaser interface {
	Release()
}

func MaxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func MinI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
