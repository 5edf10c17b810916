package domain

// InWindow returns true if local time (minutes since midnight) is inside
// the [fromM, toM) window. Supports wrap-around windows like 22:00–02:00
// (fromM > toM).
func InWindow(localM, fromM, toM int) bool {
	if fromM == toM {
		return false // zero-length window
	}
	if fromM < toM {
		return localM >= fromM && localM < toM
	}
	// wrap: [from..1440) U [0..to)
	return localM >= fromM || localM < toM
}
