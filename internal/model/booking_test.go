package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		ok   bool
	}{
		{"pending to paid", BookingPending, BookingPaid, true},
		{"pending to cancelled", BookingPending, BookingCancelled, true},
		{"paid to cancelled", BookingPaid, BookingCancelled, true},
		{"paid to paid", BookingPaid, BookingPaid, false},
		{"paid to pending", BookingPaid, BookingPending, false},
		{"cancelled to paid", BookingCancelled, BookingPaid, false},
		{"cancelled to cancelled", BookingCancelled, BookingCancelled, false},
		{"cancelled to pending", BookingCancelled, BookingPending, false},
		{"pending to pending", BookingPending, BookingPending, false},
		{"unknown status", BookingStatus("WEIRD"), BookingPaid, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to))
		})
	}
}

func TestSplitSeats(t *testing.T) {
	assert.Equal(t, []string{"A1", "A2", "B5"}, SplitSeats("A1,A2,B5"))
	assert.Equal(t, []string{"A1", "B5"}, SplitSeats(" A1 , ,B5,"))
	assert.Empty(t, SplitSeats(""))
}

func TestJoinSeats(t *testing.T) {
	assert.Equal(t, "A1,A2", JoinSeats([]string{"A1", "A2"}))
	assert.Equal(t, "", JoinSeats(nil))
}

func TestSeatListRoundTrip(t *testing.T) {
	b := Booking{Seats: JoinSeats([]string{"C3", "C4"}), TicketCount: 2}
	assert.Equal(t, []string{"C3", "C4"}, b.SeatList())
	assert.Equal(t, len(b.SeatList()), b.TicketCount)
}
