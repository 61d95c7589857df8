package booking

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/room-booking-backend/internal/event"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) all() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

var fixedNow = time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC)

func newTestStore(opts ...Option) (Store, *recordingPublisher) {
	pub := &recordingPublisher{}
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger.Discard()),
	}, opts...)
	return NewStore(NewMemoryRepository(), pub, opts...), pub
}

// at returns 2024-01-01 at the given hour and minute, UTC.
func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, s Store, resourceID int64, start, end time.Time, title string) *Booking {
	t.Helper()
	b, err := s.Create(context.Background(), CreateRequest{
		ResourceID: resourceID,
		Start:      start,
		End:        end,
		Title:      title,
	})
	require.NoError(t, err)
	return b
}

func checkAvailability(t *testing.T, s Store, resourceID int64, start, end time.Time) bool {
	t.Helper()
	result := s.CheckAvailability(context.Background(), resourceID, start, end)
	ok, open := <-result
	require.True(t, open, "availability result must be delivered before the channel closes")
	_, open = <-result
	require.False(t, open, "exactly one result is delivered")
	return ok
}

func TestEmptyStoreIsAvailable(t *testing.T) {
	s, _ := newTestStore()
	assert.True(t, checkAvailability(t, s, 1, at(10, 0), at(11, 0)))
}

func TestOverlapOnSameResource(t *testing.T) {
	s, _ := newTestStore()
	mustCreate(t, s, 1, at(10, 0), at(12, 0), "A")

	assert.False(t, checkAvailability(t, s, 1, at(11, 0), at(13, 0)), "overlaps the tail")
	assert.True(t, checkAvailability(t, s, 1, at(12, 0), at(13, 0)), "starts exactly at the end")
	assert.True(t, checkAvailability(t, s, 2, at(11, 0), at(13, 0)), "different resource")
}

func TestOverlapBoundaries(t *testing.T) {
	s, _ := newTestStore()
	mustCreate(t, s, 1, at(10, 0), at(12, 0), "Existing")

	tests := []struct {
		name       string
		start, end time.Time
		available  bool
	}{
		{"ends exactly when existing starts", at(8, 0), at(10, 0), true},
		{"starts exactly when existing ends", at(12, 0), at(13, 0), true},
		{"entirely before", at(7, 0), at(9, 0), true},
		{"entirely after", at(14, 0), at(15, 0), true},
		{"overlaps the head", at(9, 0), at(10, 1), false},
		{"overlaps the tail", at(11, 59), at(13, 0), false},
		{"inside", at(10, 30), at(11, 30), false},
		{"covers", at(9, 0), at(13, 0), false},
		{"identical", at(10, 0), at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.available, checkAvailability(t, s, 1, tt.start, tt.end))

			ok, err := s.IsAvailable(context.Background(), 1, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.available, ok, "sync and async forms agree")
		})
	}
}

func TestCrossResourceIndependence(t *testing.T) {
	s, _ := newTestStore()
	mustCreate(t, s, 1, at(10, 0), at(12, 0), "Room 1")
	mustCreate(t, s, 2, at(10, 0), at(12, 0), "Room 2")

	assert.False(t, checkAvailability(t, s, 1, at(10, 0), at(12, 0)))
	assert.False(t, checkAvailability(t, s, 2, at(10, 0), at(12, 0)))
	assert.True(t, checkAvailability(t, s, 3, at(10, 0), at(12, 0)))
}

func TestInvertedIntervalIsNeverAvailable(t *testing.T) {
	s, _ := newTestStore()

	assert.False(t, checkAvailability(t, s, 1, at(14, 0), at(13, 0)), "inverted on empty store")
	assert.False(t, checkAvailability(t, s, 1, at(14, 0), at(14, 0)), "zero length on empty store")

	mustCreate(t, s, 2, at(8, 0), at(9, 0), "Elsewhere")
	assert.False(t, checkAvailability(t, s, 1, at(14, 0), at(13, 0)))
}

func TestCreateAcceptsInvertedInterval(t *testing.T) {
	s, _ := newTestStore()

	bad := mustCreate(t, s, 1, at(14, 0), at(13, 0), "Bad")
	assert.EqualValues(t, 1, bad.ID)

	list, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bad", list[0].Title)

	assert.False(t, checkAvailability(t, s, 1, at(14, 0), at(13, 0)))
}

func TestCreateDoesNotRejectOverlapsByDefault(t *testing.T) {
	s, _ := newTestStore()
	mustCreate(t, s, 1, at(10, 0), at(12, 0), "First")
	second := mustCreate(t, s, 1, at(11, 0), at(13, 0), "Second")
	assert.EqualValues(t, 2, second.ID)
}

func TestCreateReturnsStoredRecord(t *testing.T) {
	s, _ := newTestStore()
	b, err := s.Create(context.Background(), CreateRequest{
		ResourceID:  3,
		Start:       at(9, 0),
		End:         at(9, 30),
		Title:       "Standup",
		Description: "daily sync",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, b.ID)
	assert.EqualValues(t, 3, b.ResourceID)
	assert.Equal(t, "daily sync", b.Description)
	assert.Equal(t, fixedNow, b.CreatedAt)

	stored, err := s.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, stored)
}

func TestIDsAreUniqueAndNeverReused(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	seen := make(map[int64]bool)
	var last int64
	for i := 0; i < 20; i++ {
		b := mustCreate(t, s, int64(i%3), at(8, i), at(9, i), "Meeting")
		assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
		assert.Greater(t, b.ID, last)
		seen[b.ID] = true
		last = b.ID

		if i%2 == 0 {
			require.NoError(t, s.Delete(ctx, b.ID))
		}
	}

	next := mustCreate(t, s, 1, at(20, 0), at(21, 0), "After deletes")
	assert.EqualValues(t, 21, next.ID)
}

func TestDeleteRemovesOnlyTheGivenBooking(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	first := mustCreate(t, s, 1, at(10, 0), at(11, 0), "First")
	second := mustCreate(t, s, 1, at(12, 0), at(13, 0), "Second")

	require.NoError(t, s.Delete(ctx, first.ID))

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = s.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, checkAvailability(t, s, 1, at(10, 0), at(11, 0)), "freed slot is available again")
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, pub := newTestStore()
	ctx := context.Background()

	b := mustCreate(t, s, 1, at(10, 0), at(11, 0), "Once")
	require.NoError(t, s.Delete(ctx, b.ID))
	require.NoError(t, s.Delete(ctx, b.ID))
	require.NoError(t, s.Delete(ctx, 999))

	events := pub.all()
	require.Len(t, events, 4)
	assert.Equal(t, "booking.created", events[0].Type())
	for i, found := range []bool{true, false, false} {
		e := events[i+1]
		assert.Equal(t, "booking.deleted", e.Type())
		assert.Equal(t, found, e.Found)
	}
}

func TestListIsAnIndependentSnapshotInInsertionOrder(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustCreate(t, s, 1, at(15, 0), at(16, 0), "Late")
	mustCreate(t, s, 2, at(9, 0), at(10, 0), "Early")
	mustCreate(t, s, 1, at(11, 0), at(12, 0), "Middle")

	first, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"Late", "Early", "Middle"}, titles(first))

	first[0].Title = "Mutated"
	first[0].Start = at(0, 0)
	first[1] = nil

	second, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Late", "Early", "Middle"}, titles(second))
	assert.Equal(t, at(15, 0), second[0].Start)
	assert.False(t, checkAvailability(t, s, 1, at(15, 0), at(16, 0)), "stored interval is untouched")

	byResource, err := s.List(ctx, Filter{ResourceID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Late", "Middle"}, titles(byResource))
}

func TestMutatingCreatedRecordDoesNotAffectStore(t *testing.T) {
	s, _ := newTestStore()
	b := mustCreate(t, s, 1, at(10, 0), at(11, 0), "Original")
	b.End = at(10, 0)

	assert.False(t, checkAvailability(t, s, 1, at(10, 30), at(10, 45)))
}

func TestEventsArePublishedAfterCommit(t *testing.T) {
	bus := event.NewBus(8, logger.Discard())
	s := NewStore(NewMemoryRepository(), bus, WithLogger(logger.Discard()))
	sub := bus.Subscribe(0)
	defer sub.Close()

	b := mustCreate(t, s, 1, at(10, 0), at(11, 0), "Observed")

	e := <-sub.C
	assert.Equal(t, event.EntityBooking, e.Entity)
	assert.Equal(t, event.ActionCreated, e.Action)
	assert.Equal(t, b.ID, e.EntityID)

	// By the time the event arrives the booking is visible.
	got, err := s.GetByID(context.Background(), e.EntityID)
	require.NoError(t, err)
	assert.Equal(t, "Observed", got.Title)
}

func TestConflictEnforcement(t *testing.T) {
	s, pub := newTestStore(WithConflictEnforcement())
	ctx := context.Background()

	mustCreate(t, s, 1, at(10, 0), at(12, 0), "Held")

	_, err := s.Create(ctx, CreateRequest{ResourceID: 1, Start: at(11, 0), End: at(13, 0), Title: "Clash"})
	assert.ErrorIs(t, err, ErrTimeConflict)

	_, err = s.Create(ctx, CreateRequest{ResourceID: 1, Start: at(14, 0), End: at(13, 0), Title: "Bad"})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	touching := mustCreate(t, s, 1, at(12, 0), at(13, 0), "Touching")
	assert.EqualValues(t, 2, touching.ID, "rejected creates do not consume ids")

	mustCreate(t, s, 2, at(10, 0), at(12, 0), "Other room")
	assert.Len(t, pub.all(), 3)
}

func TestConflictEnforcementUnderConcurrentWriters(t *testing.T) {
	s, _ := newTestStore(WithConflictEnforcement())
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, CreateRequest{ResourceID: 1, Start: at(10, 0), End: at(11, 0), Title: "Race"})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted, "exactly one writer wins the slot")
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			b, err := s.Create(ctx, CreateRequest{ResourceID: int64(i % 4), Start: at(8, i), End: at(9, i), Title: "Concurrent"})
			if !assert.NoError(t, err) {
				return
			}
			if i%3 == 0 {
				assert.NoError(t, s.Delete(ctx, b.ID))
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			<-s.CheckAvailability(ctx, int64(i%4), at(8, 0), at(9, 0))
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.List(ctx, Filter{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 10, "16 created, 6 deleted")

	ids := make(map[int64]bool)
	for _, b := range list {
		assert.False(t, ids[b.ID])
		ids[b.ID] = true
	}
}

func TestFreeSlots(t *testing.T) {
	s, _ := newTestStore()
	mustCreate(t, s, 1, at(12, 0), at(13, 0), "Lunch talk")
	mustCreate(t, s, 2, at(9, 0), at(18, 0), "Other room all day")

	slots, err := s.FreeSlots(context.Background(), 1, at(0, 0), "09:00", "18:00")
	require.NoError(t, err)
	assert.Equal(t, []TimeSlot{
		{StartTime: at(9, 0), EndTime: at(12, 0)},
		{StartTime: at(13, 0), EndTime: at(18, 0)},
	}, slots)
}

func TestListTimeWindowAndUpcoming(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	day := func(d, hour int) time.Time { return time.Date(2023, 12, d, hour, 0, 0, 0, time.UTC) }

	// fixedNow is 2023-12-31 08:00.
	mustCreate(t, s, 1, day(31, 10), day(31, 11), "Later today")
	mustCreate(t, s, 1, day(30, 9), day(30, 10), "Yesterday")
	mustCreate(t, s, 2, day(31, 8), day(31, 9), "Starts now")
	mustCreate(t, s, 1, day(31, 7), day(31, 12), "Started already")

	upcoming, err := s.List(ctx, Filter{Upcoming: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Later today", "Starts now"}, titles(upcoming), "insertion order is kept")

	window, err := s.List(ctx, Filter{ResourceID: 1, From: day(30, 0), To: day(31, 10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yesterday", "Started already"}, titles(window), "To is exclusive")

	// An explicit From later than now wins over Upcoming.
	later, err := s.List(ctx, Filter{Upcoming: true, From: day(31, 9)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Later today"}, titles(later))
}

func TestDemoBookingsAreConflictFree(t *testing.T) {
	s, _ := newTestStore(WithConflictEnforcement())
	for _, req := range DemoBookings(fixedNow) {
		_, err := s.Create(context.Background(), req)
		require.NoError(t, err)
	}

	assert.False(t, checkAvailability(t, s, 1, fixedNow, fixedNow.Add(time.Hour)))
	assert.True(t, checkAvailability(t, s, 2, fixedNow, fixedNow.Add(2*time.Hour)))
}

func TestWithLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: logger.FormatText, Output: &buf})
	s := NewStore(NewMemoryRepository(), nil, WithLogger(log))

	mustCreate(t, s, 1, at(10, 0), at(11, 0), "Logged")

	out := buf.String()
	assert.Contains(t, out, "booking created")
	assert.Contains(t, out, "component=booking_store")
	assert.Contains(t, out, "booking_id=1")
}

func titles(bookings []*Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.Title
	}
	return out
}
