package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/brian/tmov-booking/internal/model"
    "github.com/brian/tmov-booking/internal/service"
)

// BookingHandler exposes the booking coordinator over HTTP. All
// routes except the occupied-seats lookup assume JWT authentication
// has already been performed by middleware; methods return 401 when
// the member id cannot be extracted from the context.
type BookingHandler struct {
    Svc service.BookingService
}

// NewBookingHandler constructs a BookingHandler. The service must be non-nil.
func NewBookingHandler(svc service.BookingService) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Svc: svc}
}

// bookingResponse is the wire shape of a booking, matching the
// fields clients need to render a ticket.
type bookingResponse struct {
    CreatedAt   string   `json:"created_at"`
    BookingID   uint64   `json:"booking_id"`
    ScheduleID  uint64   `json:"schedule_id"`
    TmdbID      uint64   `json:"tmdb_id"`
    MovieTitle  string   `json:"movie_title"`
    PosterURL   string   `json:"poster_url,omitempty"`
    CinemaName  string   `json:"cinema_name"`
    ShowDate    string   `json:"show_date"`
    ShowTime    string   `json:"show_time"`
    Seats       []string `json:"seats"`
    TicketCount int      `json:"ticket_count"`
    TotalPrice  int      `json:"total_price"`
    Status      string   `json:"status"`
}

func toBookingResponse(b model.Booking) bookingResponse {
    return bookingResponse{
        CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
        BookingID:   b.ID,
        ScheduleID:  b.ScheduleID,
        TmdbID:      b.TmdbID,
        MovieTitle:  b.MovieTitle,
        PosterURL:   b.PosterURL,
        CinemaName:  b.CinemaName,
        ShowDate:    b.ShowDate,
        ShowTime:    b.ShowTime,
        Seats:       b.SeatList(),
        TicketCount: b.TicketCount,
        TotalPrice:  b.TotalPrice,
        Status:      string(b.Status),
    }
}

// CreateBooking handles POST /api/bookings. The body carries the
// schedule id, seat labels and the movie/cinema snapshot. On success
// it returns 201 Created with the new booking. A seat that was taken
// in the meantime yields 409 with the conflicting seat label so the
// client can re-select and resubmit.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req service.CreateBookingRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.ScheduleID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id is required"})
    }

    booking, err := h.Svc.CreateBooking(c.Request().Context(), memberID, req)
    if err != nil {
        var conflict *service.SeatConflictError
        switch {
        case errors.As(err, &conflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error(), "seat": conflict.Seat})
        case errors.Is(err, service.ErrMemberNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
        case errors.Is(err, service.ErrEmptySeatSelection):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats are required"})
        case errors.Is(err, service.ErrBookingUnavailable):
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "booking created",
        "booking": toBookingResponse(booking),
    })
}

// PayBooking handles POST /api/bookings/:id/pay. Payment is simulated:
// the booking simply transitions from PENDING to PAID.
func (h *BookingHandler) PayBooking(c echo.Context) error {
    return h.transition(c, h.Svc.PayBooking, "payment successful")
}

// CancelBooking handles POST /api/bookings/:id/cancel. The booking
// transitions to CANCELLED and its seats become available again.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    return h.transition(c, h.Svc.CancelBooking, "booking cancelled")
}

// transition parses the path parameter, runs the pay or cancel
// operation and maps the coordinator errors onto HTTP statuses.
func (h *BookingHandler) transition(c echo.Context, op func(ctx context.Context, memberID, bookingID uint64) error, okMsg string) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := op(c.Request().Context(), memberID, bookingID); err != nil {
        switch {
        case errors.Is(err, service.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case errors.Is(err, service.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case errors.Is(err, service.ErrInvalidStateTransition):
            return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state transition"})
        case errors.Is(err, service.ErrBookingUnavailable):
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
}

// ListMyBookings handles GET /api/bookings. It returns all bookings
// of the current member, newest first. When no bookings exist, it
// returns an empty array.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookings, err := h.Svc.ListBookings(c.Request().Context(), memberID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }
    items := make([]bookingResponse, 0, len(bookings))
    for _, b := range bookings {
        items = append(items, toBookingResponse(b))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetOccupiedSeats handles GET /api/bookings/occupied?schedule_id=N.
// It returns the occupied-seat set of a schedule so clients can grey
// out taken seats before submitting. The data is a snapshot; the
// authoritative check happens inside CreateBooking.
func (h *BookingHandler) GetOccupiedSeats(c echo.Context) error {
    scheduleID, err := strconv.ParseUint(c.QueryParam("schedule_id"), 10, 64)
    if err != nil || scheduleID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
    }
    seats, err := h.Svc.OccupiedSeats(c.Request().Context(), scheduleID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load occupied seats"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "schedule_id": scheduleID,
        "occupied":    seats,
    })
}
