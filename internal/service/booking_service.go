// Package service contains the booking coordinator: the component
// that serializes concurrent seat selections per schedule and
// enforces the booking status state machine. Handlers stay thin and
// translate the errors defined here into HTTP responses.
package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/brian/tmov-booking/internal/model"
    "github.com/brian/tmov-booking/internal/queue"
    "github.com/brian/tmov-booking/internal/repository"
)

var (
    // ErrMemberNotFound means the booking member id resolved to no account.
    ErrMemberNotFound = errors.New("member not found")
    // ErrEmptySeatSelection means no usable seat labels were supplied.
    ErrEmptySeatSelection = errors.New("no seats selected")
    // ErrBookingNotFound means the booking id is unknown.
    ErrBookingNotFound = errors.New("booking not found")
    // ErrForbidden means the caller does not own the booking.
    ErrForbidden = errors.New("forbidden")
    // ErrInvalidStateTransition means the requested status change is
    // not allowed from the booking's current status.
    ErrInvalidStateTransition = errors.New("invalid state transition")
    // ErrBookingUnavailable means the per-schedule lock could not be
    // acquired in time. The request can be retried as-is.
    ErrBookingUnavailable = errors.New("booking temporarily unavailable, please retry")
)

// SeatConflictError reports the first requested seat that is already
// taken by a non-cancelled booking. Seats are checked in request
// order and only the first conflict is reported; the client is
// expected to re-select seats and resubmit.
type SeatConflictError struct {
    Seat string
}

func (e *SeatConflictError) Error() string {
    return fmt.Sprintf("seat %s was just taken, please choose again", e.Seat)
}

// CreateBookingRequest carries the caller-supplied booking data. The
// movie/cinema metadata is a snapshot provided by the client and is
// not re-verified against a catalogue here.
type CreateBookingRequest struct {
    ScheduleID uint64   `json:"schedule_id"`
    TmdbID     uint64   `json:"tmdb_id"`
    MovieTitle string   `json:"movie_title"`
    PosterURL  string   `json:"poster_url"`
    CinemaName string   `json:"cinema_name"`
    ShowDate   string   `json:"show_date"`
    ShowTime   string   `json:"show_time"`
    Seats      []string `json:"seats"`
    TotalPrice int      `json:"total_price"`
}

// BookingService is the coordinator interface consumed by the HTTP
// handlers. All methods are safe for concurrent use.
type BookingService interface {
    CreateBooking(ctx context.Context, memberID uint64, req CreateBookingRequest) (model.Booking, error)
    PayBooking(ctx context.Context, memberID, bookingID uint64) error
    CancelBooking(ctx context.Context, memberID, bookingID uint64) error
    ListBookings(ctx context.Context, memberID uint64) ([]model.Booking, error)
    OccupiedSeats(ctx context.Context, scheduleID uint64) ([]string, error)
}

// Publisher emits booking lifecycle events after commit. A nil
// Publisher disables event publishing entirely.
type Publisher interface {
    PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
    PublishBookingStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error
}

type bookingService struct {
    bookings repository.BookingStore
    members  repository.MemberStore
    events   Publisher
}

// NewBookingService constructs the coordinator. events may be nil
// when no message broker is configured.
func NewBookingService(bookings repository.BookingStore, members repository.MemberStore, events Publisher) BookingService {
    if bookings == nil || members == nil {
        panic("nil store passed to NewBookingService")
    }
    return &bookingService{bookings: bookings, members: members, events: events}
}

// CreateBooking reserves seats for a schedule. The conflict check and
// the insert run inside one transaction: the FOR UPDATE read blocks
// any concurrent creator of the same schedule, so no two committed
// bookings can ever claim the same seat. Different schedules never
// contend with each other.
func (s *bookingService) CreateBooking(ctx context.Context, memberID uint64, req CreateBookingRequest) (model.Booking, error) {
    if _, err := s.members.GetByID(ctx, memberID); err != nil {
        if errors.Is(err, repository.ErrMemberNotFound) {
            return model.Booking{}, ErrMemberNotFound
        }
        return model.Booking{}, err
    }

    seats := normalizeSeats(req.Seats)
    if len(seats) == 0 {
        return model.Booking{}, ErrEmptySeatSelection
    }

    booking := model.Booking{
        MemberID:    memberID,
        ScheduleID:  req.ScheduleID,
        TmdbID:      req.TmdbID,
        MovieTitle:  req.MovieTitle,
        PosterURL:   req.PosterURL,
        CinemaName:  req.CinemaName,
        ShowDate:    req.ShowDate,
        ShowTime:    req.ShowTime,
        Seats:       model.JoinSeats(seats),
        TicketCount: len(seats),
        TotalPrice:  req.TotalPrice,
        Status:      model.BookingPending,
    }

    err := s.bookings.WithinTx(ctx, func(tx repository.BookingTx) error {
        // Everyone booking this schedule queues up on this read until
        // the holding transaction commits, so the occupied set below
        // can never be stale when the insert lands.
        existing, err := tx.FindActiveByScheduleForUpdate(ctx, req.ScheduleID)
        if err != nil {
            return err
        }
        occupied := occupiedSet(existing)
        for _, seat := range seats {
            if _, taken := occupied[seat]; taken {
                return &SeatConflictError{Seat: seat}
            }
        }
        return tx.Create(ctx, &booking)
    })
    if err != nil {
        if errors.Is(err, repository.ErrLockWait) {
            return model.Booking{}, ErrBookingUnavailable
        }
        return model.Booking{}, err
    }

    s.publishCreated(booking)
    return booking, nil
}

// PayBooking transitions a booking from PENDING to PAID. Payment is
// simulated; there is no gateway call. Only the owner may pay.
func (s *bookingService) PayBooking(ctx context.Context, memberID, bookingID uint64) error {
    return s.transition(ctx, memberID, bookingID, model.BookingPaid)
}

// CancelBooking transitions a booking to CANCELLED from PENDING or
// PAID (the refund path). Cancelling an already cancelled booking is
// rejected with ErrInvalidStateTransition rather than silently
// accepted. No seat re-check is needed: cancellation only frees
// capacity.
func (s *bookingService) CancelBooking(ctx context.Context, memberID, bookingID uint64) error {
    return s.transition(ctx, memberID, bookingID, model.BookingCancelled)
}

// transition loads the booking under a row lock, verifies ownership
// and the state machine, then writes the new status in the same
// transaction.
func (s *bookingService) transition(ctx context.Context, memberID, bookingID uint64, to model.BookingStatus) error {
    var from model.BookingStatus
    err := s.bookings.WithinTx(ctx, func(tx repository.BookingTx) error {
        b, err := tx.GetByIDForUpdate(ctx, bookingID)
        if err != nil {
            return err
        }
        if b.MemberID != memberID {
            return ErrForbidden
        }
        if !b.Status.CanTransition(to) {
            return ErrInvalidStateTransition
        }
        from = b.Status
        return tx.UpdateStatus(ctx, bookingID, to, time.Now().UTC())
    })
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrBookingNotFound):
            return ErrBookingNotFound
        case errors.Is(err, repository.ErrLockWait):
            return ErrBookingUnavailable
        }
        return err
    }

    s.publishStatusChanged(bookingID, memberID, from, to)
    return nil
}

// ListBookings returns the member's bookings, newest first.
func (s *bookingService) ListBookings(ctx context.Context, memberID uint64) ([]model.Booking, error) {
    return s.bookings.ListByMember(ctx, memberID)
}

// OccupiedSeats returns the union of seat labels across all
// non-cancelled bookings of a schedule. This is a plain read without
// locks; it is a browse-time snapshot, not a reservation guarantee.
func (s *bookingService) OccupiedSeats(ctx context.Context, scheduleID uint64) ([]string, error) {
    bookings, err := s.bookings.FindActiveBySchedule(ctx, scheduleID)
    if err != nil {
        return nil, err
    }
    seen := make(map[string]struct{})
    seats := make([]string, 0)
    for _, b := range bookings {
        for _, seat := range b.SeatList() {
            if _, ok := seen[seat]; !ok {
                seen[seat] = struct{}{}
                seats = append(seats, seat)
            }
        }
    }
    return seats, nil
}

// normalizeSeats trims labels, drops empties and deduplicates while
// preserving the caller's order. Conflict reporting depends on that
// order: the first conflicting seat in the request is the one named.
func normalizeSeats(in []string) []string {
    out := make([]string, 0, len(in))
    seen := make(map[string]struct{}, len(in))
    for _, s := range in {
        s = strings.TrimSpace(s)
        if s == "" {
            continue
        }
        if _, ok := seen[s]; ok {
            continue
        }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}

// occupiedSet flattens the seat columns of the given bookings into a
// lookup set.
func occupiedSet(bookings []model.Booking) map[string]struct{} {
    occupied := make(map[string]struct{})
    for _, b := range bookings {
        for _, seat := range b.SeatList() {
            occupied[seat] = struct{}{}
        }
    }
    return occupied
}

// publishCreated fires the booking.created event in the background.
// Publishing is best effort: a broker outage must never fail or slow
// down a booking that already committed.
func (s *bookingService) publishCreated(b model.Booking) {
    if s.events == nil {
        return
    }
    ev := queue.BookingCreatedEvent{
        BookingID:   b.ID,
        MemberID:    b.MemberID,
        ScheduleID:  b.ScheduleID,
        MovieTitle:  b.MovieTitle,
        CinemaName:  b.CinemaName,
        ShowDate:    b.ShowDate,
        ShowTime:    b.ShowTime,
        Seats:       b.SeatList(),
        TicketCount: b.TicketCount,
        TotalPrice:  b.TotalPrice,
        CreatedAt:   b.CreatedAt.Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := s.events.PublishBookingCreated(ctx, ev); err != nil {
            log.Printf("booking: publish created event failed: %v", err)
        }
    }()
}

func (s *bookingService) publishStatusChanged(bookingID, memberID uint64, from, to model.BookingStatus) {
    if s.events == nil {
        return
    }
    ev := queue.BookingStatusChangedEvent{
        BookingID: bookingID,
        MemberID:  memberID,
        From:      string(from),
        To:        string(to),
        ChangedAt: time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := s.events.PublishBookingStatusChanged(ctx, ev); err != nil {
            log.Printf("booking: publish status event failed: %v", err)
        }
    }()
}
