// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service to distinguish between different failure scenarios
// without inspecting driver error strings themselves. For example,
// ErrLockWait signals that the database gave up waiting for the
// per-schedule booking lock, which callers should treat as retryable.
package repository

import (
    "errors"
    "strings"
)

// ErrBookingNotFound is returned when the requested booking id does
// not exist in the bookings table.
var ErrBookingNotFound = errors.New("booking not found")

// ErrMemberNotFound is returned when a member lookup by id or email
// matches no row.
var ErrMemberNotFound = errors.New("member not found")

// ErrEmailExists is returned when registering a member with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrLockWait is returned when a statement inside the booking
// transaction fails because a row lock could not be acquired in
// time (MySQL error 1205) or the transaction was chosen as a
// deadlock victim (MySQL error 1213). Both cases are transient: the
// caller may simply retry the request.
var ErrLockWait = errors.New("lock wait timeout")

// isLockErr inspects a driver error for the MySQL lock-wait-timeout
// and deadlock error codes. The driver does not expose typed errors
// for these, so the numeric codes are matched in the message, the
// same way duplicate-key (1062) detection works for member emails.
func isLockErr(err error) bool {
    if err == nil {
        return false
    }
    msg := err.Error()
    return strings.Contains(msg, "1205") || strings.Contains(msg, "1213")
}
