package tour

import "time"

// HasConflict reports whether a visit starting at start collides with any busy interval.
// Both the candidate and every busy interval are padded by the travel buffer, so two
// visits always keep at least two buffers of travel time between them.
func HasConflict(start time.Time, visit, buffer time.Duration, busy []BusyInterval) bool {
	_, ok := firstConflict(start, visit, buffer, busy)
	return ok
}

func firstConflict(start time.Time, visit, buffer time.Duration, busy []BusyInterval) (BusyInterval, bool) {
	candidate := BufferedWindow(start, visit, buffer)
	for _, b := range busy {
		if !b.Valid() {
			continue
		}
		if candidate.Overlaps(b.Buffered(buffer)) {
			return b, true
		}
	}
	return BusyInterval{}, false
}
