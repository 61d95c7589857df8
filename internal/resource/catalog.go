package resource

import "time"

// DefaultCatalog returns the demo rooms and equipment loaded when seeding is enabled.
func DefaultCatalog(now time.Time) []Resource {
	capacity := func(n int) *int { return &n }
	return []Resource{
		{ID: 1, Name: "Meeting Room A", Kind: KindRoom, Capacity: capacity(10), CreatedAt: now},
		{ID: 2, Name: "Meeting Room B", Kind: KindRoom, Capacity: capacity(6), CreatedAt: now},
		{ID: 3, Name: "Projector", Kind: KindEquipment, CreatedAt: now},
		{ID: 4, Name: "Laptop", Kind: KindEquipment, CreatedAt: now},
		{ID: 5, Name: "Conference Hall", Kind: KindRoom, Capacity: capacity(20), CreatedAt: now},
	}
}
