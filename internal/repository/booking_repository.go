package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/brian/tmov-booking/internal/model"
)

// BookingStore is the durable ledger of bookings consumed by the
// booking service. Reads that participate in the seat-conflict check
// must happen through WithinTx so they share the transaction (and the
// row locks) with the subsequent insert or status update.
type BookingStore interface {
    // WithinTx runs fn inside a single database transaction. When fn
    // returns nil the transaction is committed; any error rolls it
    // back and is returned unchanged.
    WithinTx(ctx context.Context, fn func(BookingTx) error) error
    // GetByID loads a single booking. Returns ErrBookingNotFound for
    // unknown ids.
    GetByID(ctx context.Context, id uint64) (model.Booking, error)
    // ListByMember returns all bookings of a member, newest first.
    ListByMember(ctx context.Context, memberID uint64) ([]model.Booking, error)
    // FindActiveBySchedule returns the non-cancelled bookings of a
    // schedule without taking locks. Suitable for browse endpoints
    // only; the conflict check must use the locking variant.
    FindActiveBySchedule(ctx context.Context, scheduleID uint64) ([]model.Booking, error)
}

// BookingTx exposes the ledger operations available inside a
// transaction started by BookingStore.WithinTx.
type BookingTx interface {
    // FindActiveByScheduleForUpdate reads all non-cancelled bookings
    // of a schedule under an exclusive lock. Concurrent callers for
    // the same schedule block here until the holding transaction
    // commits; callers for different schedules proceed in parallel.
    FindActiveByScheduleForUpdate(ctx context.Context, scheduleID uint64) ([]model.Booking, error)
    // Create inserts a new booking and populates its ID, CreatedAt
    // and UpdatedAt fields.
    Create(ctx context.Context, b *model.Booking) error
    // GetByIDForUpdate loads a booking under an exclusive row lock so
    // a status check and the following update cannot interleave with
    // another writer.
    GetByIDForUpdate(ctx context.Context, id uint64) (model.Booking, error)
    // UpdateStatus sets the status and updated_at of a booking.
    UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) error
}

// BookingRepo provides CRUD operations for bookings backed by the
// bookings table. All timestamp fields are stored in UTC; the table
// carries an index on schedule_id so the FOR UPDATE read locks only
// the rows (and index range) of a single schedule.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, member_id, schedule_id, tmdb_id, movie_title, poster_url,
    cinema_name, show_date, show_time, seats, ticket_count, total_price, status,
    created_at, updated_at`

// scanBooking reads one bookings row into a model.Booking. poster_url
// is nullable in the schema, the remaining columns are not.
func scanBooking(row interface{ Scan(...interface{}) error }) (model.Booking, error) {
    var b model.Booking
    var poster sql.NullString
    err := row.Scan(
        &b.ID, &b.MemberID, &b.ScheduleID, &b.TmdbID, &b.MovieTitle, &poster,
        &b.CinemaName, &b.ShowDate, &b.ShowTime, &b.Seats, &b.TicketCount, &b.TotalPrice, &b.Status,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return model.Booking{}, err
    }
    if poster.Valid {
        b.PosterURL = poster.String
    }
    return b, nil
}

// WithinTx begins a transaction, runs fn against it and commits when
// fn succeeds. On error the transaction is rolled back and the error
// is returned to the caller untouched so sentinel comparisons keep
// working across the boundary.
func (r *BookingRepo) WithinTx(ctx context.Context, fn func(BookingTx) error) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    if err := fn(&bookingTx{tx: tx}); err != nil {
        _ = tx.Rollback()
        return err
    }
    return tx.Commit()
}

// GetByID returns a single booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Booking{}, ErrBookingNotFound
    }
    return b, err
}

// ListByMember returns all bookings created by the member, ordered by
// creation time descending (newest first). When no bookings exist an
// empty slice is returned.
func (r *BookingRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE member_id = ?
               ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, memberID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

// FindActiveBySchedule returns all bookings of a schedule whose status
// is not CANCELLED, without locking. Used by the public occupied-seats
// endpoint; createBooking must go through the FOR UPDATE variant.
func (r *BookingRepo) FindActiveBySchedule(ctx context.Context, scheduleID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE schedule_id = ? AND status <> 'CANCELLED'`
    rows, err := r.db.QueryContext(ctx, q, scheduleID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// bookingTx implements BookingTx on top of an open *sql.Tx.
type bookingTx struct {
    tx *sql.Tx
}

// FindActiveByScheduleForUpdate is the pessimistic read at the heart
// of the seat-conflict check. The FOR UPDATE clause locks every
// matching row plus the schedule_id index range, so a second
// transaction booking the same schedule blocks until this one
// commits and then sees the freshly inserted rows. Readers of other
// schedules are unaffected.
func (t *bookingTx) FindActiveByScheduleForUpdate(ctx context.Context, scheduleID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE schedule_id = ? AND status <> 'CANCELLED'
               FOR UPDATE`
    rows, err := t.tx.QueryContext(ctx, q, scheduleID)
    if err != nil {
        if isLockErr(err) {
            return nil, ErrLockWait
        }
        return nil, err
    }
    defer rows.Close()
    return collectBookings(rows)
}

// Create inserts a new booking row. Timestamps are set explicitly
// from the clock passed in on the struct rather than relying on
// column defaults, so the values the caller returns match what was
// stored. The generated id is written back to b.
func (t *bookingTx) Create(ctx context.Context, b *model.Booking) error {
    now := time.Now().UTC().Truncate(time.Second)
    b.CreatedAt = now
    b.UpdatedAt = now
    const q = `INSERT INTO bookings
        (member_id, schedule_id, tmdb_id, movie_title, poster_url, cinema_name,
         show_date, show_time, seats, ticket_count, total_price, status,
         created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := t.tx.ExecContext(ctx, q,
        b.MemberID, b.ScheduleID, b.TmdbID, b.MovieTitle, nullable(b.PosterURL), b.CinemaName,
        b.ShowDate, b.ShowTime, b.Seats, b.TicketCount, b.TotalPrice, string(b.Status),
        now.Format("2006-01-02 15:04:05"), now.Format("2006-01-02 15:04:05"),
    )
    if err != nil {
        if isLockErr(err) {
            return ErrLockWait
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// GetByIDForUpdate loads a booking under an exclusive row lock.
func (t *bookingTx) GetByIDForUpdate(ctx context.Context, id uint64) (model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
    b, err := scanBooking(t.tx.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Booking{}, ErrBookingNotFound
    }
    if isLockErr(err) {
        return model.Booking{}, ErrLockWait
    }
    return b, err
}

// UpdateStatus writes the new status and bumps updated_at.
func (t *bookingTx) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) error {
    const q = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
    res, err := t.tx.ExecContext(ctx, q, string(status), now.UTC().Format("2006-01-02 15:04:05"), id)
    if err != nil {
        if isLockErr(err) {
            return ErrLockWait
        }
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// nullable maps an empty string to SQL NULL for optional columns.
func nullable(s string) interface{} {
    if s == "" {
        return nil
    }
    return s
}
