package booking

import "time"

// DemoBookings returns the two sample bookings loaded alongside the demo
// resource catalog: one starting at now on resource 1 and one two hours
// later on resource 2.
func DemoBookings(now time.Time) []CreateRequest {
	return []CreateRequest{
		{ResourceID: 1, Start: now, End: now.Add(time.Hour), Title: "Planning meeting"},
		{ResourceID: 2, Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour), Title: "Team sync"},
	}
}
