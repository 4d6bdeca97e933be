package model

import (
    "strings"
    "time"
)

// BookingStatus enumerates the lifecycle states of a booking.  A
// booking is created as PENDING, becomes PAID when the (simulated)
// payment succeeds and CANCELLED when the member cancels it.  A
// cancelled booking no longer occupies its seats.
type BookingStatus string

const (
    BookingPending   BookingStatus = "PENDING"   // created, awaiting payment
    BookingPaid      BookingStatus = "PAID"      // payment completed
    BookingCancelled BookingStatus = "CANCELLED" // terminal, seats released
)

// CanTransition reports whether a booking may move from its current
// status to the target status.  The only permitted transitions are
// PENDING→PAID, PENDING→CANCELLED and PAID→CANCELLED (refund path).
// CANCELLED is terminal.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
    switch s {
    case BookingPending:
        return to == BookingPaid || to == BookingCancelled
    case BookingPaid:
        return to == BookingCancelled
    }
    return false
}

// Booking records a member's seat purchase for a single schedule.
// Seats are stored comma-joined (e.g. "A1,A2") in the same column
// layout the bookings table uses.  TicketCount always equals the
// number of seats at creation time and is never mutated afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  MemberID    – member who owns the booking.
//  ScheduleID  – schedule (showtime) being booked.
//  TmdbID      – external movie reference supplied by the caller.
//  MovieTitle  – movie title snapshot at booking time.
//  PosterURL   – poster snapshot, may be empty.
//  CinemaName  – cinema name snapshot.
//  ShowDate    – screening date, "2006-01-02".
//  ShowTime    – screening time, e.g. "19:30".
//  Seats       – comma-joined seat labels.
//  TicketCount – number of seats booked.
//  TotalPrice  – total price supplied by the caller.
//  Status      – current lifecycle status.
//  CreatedAt   – creation timestamp (UTC).
//  UpdatedAt   – last update timestamp (UTC).
type Booking struct {
    ID          uint64        `json:"booking_id"`
    MemberID    uint64        `json:"member_id"`
    ScheduleID  uint64        `json:"schedule_id"`
    TmdbID      uint64        `json:"tmdb_id"`
    MovieTitle  string        `json:"movie_title"`
    PosterURL   string        `json:"poster_url,omitempty"`
    CinemaName  string        `json:"cinema_name"`
    ShowDate    string        `json:"show_date"`
    ShowTime    string        `json:"show_time"`
    Seats       string        `json:"seats"`
    TicketCount int           `json:"ticket_count"`
    TotalPrice  int           `json:"total_price"`
    Status      BookingStatus `json:"status"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   time.Time     `json:"updated_at"`
}

// SeatList splits the comma-joined seats column back into labels.
// Empty segments are dropped so a blank column yields an empty slice.
func (b Booking) SeatList() []string {
    return SplitSeats(b.Seats)
}

// SplitSeats converts a comma-joined seat string into individual
// labels, trimming whitespace and skipping empty segments.
func SplitSeats(s string) []string {
    parts := strings.Split(s, ",")
    seats := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" {
            seats = append(seats, p)
        }
    }
    return seats
}

// JoinSeats converts seat labels into the comma-joined column form.
func JoinSeats(seats []string) string {
    return strings.Join(seats, ",")
}
