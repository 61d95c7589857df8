package booking

import (
	"sort"
	"time"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// CalculateAvailability returns the free slots between openStr and closeStr
// on date, given the bookings of a single resource. Bookings with an empty
// or inverted interval occupy nothing. Times are interpreted in date's
// location. A fully booked day yields nil.
func CalculateAvailability(date time.Time, openStr, closeStr string, bookings []*Booking) ([]TimeSlot, error) {
	openAt, err := clockOn(date, openStr)
	if err != nil {
		return nil, err
	}
	closeAt, err := clockOn(date, closeStr)
	if err != nil {
		return nil, err
	}
	if !closeAt.After(openAt) {
		return nil, ErrInvalidTimeRange
	}

	busy := make([]TimeSlot, 0, len(bookings))
	for _, b := range bookings {
		if !b.End.After(b.Start) || !b.Overlaps(openAt, closeAt) {
			continue
		}
		busy = append(busy, TimeSlot{StartTime: b.Start, EndTime: b.End})
	}
	sort.Slice(busy, func(i, j int) bool {
		return busy[i].StartTime.Before(busy[j].StartTime)
	})

	var free []TimeSlot
	cursor := openAt
	for _, slot := range busy {
		if slot.StartTime.After(cursor) {
			free = append(free, TimeSlot{StartTime: cursor, EndTime: slot.StartTime})
		}
		if slot.EndTime.After(cursor) {
			cursor = slot.EndTime
		}
	}
	if closeAt.After(cursor) {
		free = append(free, TimeSlot{StartTime: cursor, EndTime: closeAt})
	}
	return free, nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		y, m, d := date.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
	}
	return time.Time{}, ErrInvalidInput
}
