package domain

// bookingEdges lists every legal booking transition. Completed, cancelled and
// refunded are absorbing.
var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingRefunded},
	BookingConfirmed: {BookingCompleted, BookingCancelled, BookingRefunded},
	BookingCompleted: {},
	BookingCancelled: {},
	BookingRefunded:  {},
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingEdges[s]
	return ok
}

func (s BookingStatus) Terminal() bool {
	return len(bookingEdges[s]) == 0 && s.Valid()
}

// Active reports whether the booking counts toward capacity and blocks
// overlapping intervals.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, next := range bookingEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}
