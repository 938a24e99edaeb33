package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestSlot(capacity int) *Slot {
	return NewSlot(uuid.New(), testNow, "10:00", "10:30", capacity, testNow)
}

func TestSlot_BookUntilFull(t *testing.T) {
	s := newTestSlot(2)

	s1, err := s.Apply(BookSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, s1.BookingCount)
	assert.Equal(t, SlotAvailable, s1.Status)

	s2, err := s1.Apply(BookSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 2, s2.BookingCount)
	assert.Equal(t, SlotFullyBooked, s2.Status)

	_, err = s2.Apply(BookSlot{Now: testNow})
	assert.ErrorIs(t, err, ErrSlotFullyBooked)
	assert.Equal(t, ClassConflict, Classify(err))

	// исходный слот не изменился
	assert.Equal(t, 0, s.BookingCount)
}

func TestSlot_BookRejectedWhenBlockedOrExpired(t *testing.T) {
	for _, action := range []SlotAction{BlockSlot{Now: testNow}, ExpireSlot{Now: testNow}} {
		s, err := newTestSlot(3).Apply(action)
		require.NoError(t, err)

		_, err = s.Apply(BookSlot{Now: testNow})
		assert.ErrorIs(t, err, ErrIllegalState, action.Name())
	}
}

func TestSlot_BookReleaseRoundTrip(t *testing.T) {
	s := newTestSlot(1)

	booked, err := s.Apply(BookSlot{Now: testNow})
	require.NoError(t, err)
	require.Equal(t, SlotFullyBooked, booked.Status)

	released, err := booked.Apply(ReleaseSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, s.BookingCount, released.BookingCount)
	assert.Equal(t, s.Status, released.Status)
}

func TestSlot_ReleaseKeepsBlock(t *testing.T) {
	s := newTestSlot(3)
	s, _ = s.Apply(BookSlot{Now: testNow})
	s, _ = s.Apply(BookSlot{Now: testNow})

	blocked, err := s.Apply(BlockSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 2, blocked.BookingCount)

	released, err := blocked.Apply(ReleaseSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, released.BookingCount)
	assert.Equal(t, SlotBlocked, released.Status)
}

func TestSlot_ReleaseEmpty(t *testing.T) {
	_, err := newTestSlot(1).Apply(ReleaseSlot{Now: testNow})
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.Equal(t, ClassInvalidState, Classify(err))
}

func TestSlot_ExpiredIsTerminal(t *testing.T) {
	s, err := newTestSlot(2).Apply(BookSlot{Now: testNow})
	require.NoError(t, err)
	s, err = s.Apply(ExpireSlot{})
	require.NoError(t, err)

	_, err = s.Apply(BlockSlot{Now: testNow})
	assert.ErrorIs(t, err, ErrIllegalState)
	_, err = s.Apply(ReleaseSlot{Now: testNow})
	assert.ErrorIs(t, err, ErrIllegalState)

	again, err := s.Apply(ExpireSlot{})
	require.NoError(t, err)
	assert.Equal(t, SlotExpired, again.Status)
}

func TestSlot_HasElapsed(t *testing.T) {
	s := newTestSlot(1)
	assert.False(t, s.HasElapsed(testNow))
	assert.False(t, s.HasElapsed(testNow.Add(14*time.Hour)))
	assert.True(t, s.HasElapsed(DateOnly(testNow).AddDate(0, 0, 1)))
}

func TestAppointmentCapacity_AvailableCapacity(t *testing.T) {
	c := AppointmentCapacity{StaffCount: 5, SlotDurationMinutes: 30, UtilizationFactor: 0.8, MaxBookingCapacity: 1}
	require.NoError(t, c.Validate())
	assert.Equal(t, 72, c.AvailableCapacity(9*60))
	assert.Equal(t, 0, c.AvailableCapacity(0))
}
