// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer plumbing around them.
package queue

// BookingCreatedEvent is published when a booking is successfully created.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
    BookingID   uint64   `json:"booking_id"`
    MemberID    uint64   `json:"member_id"`
    ScheduleID  uint64   `json:"schedule_id"`
    MovieTitle  string   `json:"movie_title"`
    CinemaName  string   `json:"cinema_name"`
    ShowDate    string   `json:"show_date"`
    ShowTime    string   `json:"show_time"`
    Seats       []string `json:"seats"`
    TicketCount int      `json:"ticket_count"`
    TotalPrice  int      `json:"total_price"`
    CreatedAt   string   `json:"created_at"`
}

// BookingStatusChangedEvent is published when a booking moves through
// its state machine (pay or cancel).
type BookingStatusChangedEvent struct {
    BookingID uint64 `json:"booking_id"`
    MemberID  uint64 `json:"member_id"`
    From      string `json:"from"`
    To        string `json:"to"`
    ChangedAt string `json:"changed_at"`
}
