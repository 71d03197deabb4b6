package tour

import "time"

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// BufferedWindow pads a visit of the given duration by buffer on both sides.
func BufferedWindow(start time.Time, duration, buffer time.Duration) Window {
	return Window{
		Start: start.Add(-buffer),
		End:   start.Add(duration + buffer),
	}
}

// Overlaps reports whether two half-open windows intersect.
// Touching endpoints do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Within reports whether w lies entirely inside outer.
func (w Window) Within(outer Window) bool {
	return !w.Start.Before(outer.Start) && !w.End.After(outer.End)
}

// Buffered returns the busy interval padded by buffer on both sides.
func (b BusyInterval) Buffered(buffer time.Duration) Window {
	return BufferedWindow(b.Start, b.End.Sub(b.Start), buffer)
}

// Valid reports whether the interval has both bounds and a positive length.
func (b BusyInterval) Valid() bool {
	return !b.Start.IsZero() && !b.End.IsZero() && b.Start.Before(b.End)
}
