package types

// GrowSlice extends a slice to newCap entries, keeping the existing values in place
func GrowSlice[T any](myslice []T, newCap int) (biggerSlice []T) {
	if len(myslice) >= newCap {
		return myslice
	}
	biggerSlice = make([]T, newCap)
	copy(biggerSlice, myslice)
	return
}
