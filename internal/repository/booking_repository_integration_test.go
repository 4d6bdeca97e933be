//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brian/tmov-booking/internal/database"
	"github.com/brian/tmov-booking/internal/model"
	"github.com/brian/tmov-booking/internal/repository"
	"github.com/brian/tmov-booking/internal/service"
)

// These tests run against a real MySQL instance and verify that the
// FOR UPDATE read actually serializes concurrent bookings of one
// schedule. Run with:
//
//	TEST_DB_HOST=127.0.0.1 TEST_DB_PORT=3306 TEST_DB_USER=root \
//	TEST_DB_NAME=tmov_test go test -tags integration ./internal/repository/

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping integration test")
	}
	db, err := database.Open(
		os.Getenv("TEST_DB_USER"),
		os.Getenv("TEST_DB_PASS"),
		host,
		os.Getenv("TEST_DB_PORT"),
		os.Getenv("TEST_DB_NAME"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS members (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			display_name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			member_id BIGINT UNSIGNED NOT NULL,
			schedule_id BIGINT UNSIGNED NOT NULL,
			tmdb_id BIGINT UNSIGNED NOT NULL,
			movie_title VARCHAR(255) NOT NULL,
			poster_url VARCHAR(512) NULL,
			cinema_name VARCHAR(255) NOT NULL,
			show_date VARCHAR(10) NOT NULL,
			show_time VARCHAR(5) NOT NULL,
			seats VARCHAR(1024) NOT NULL,
			ticket_count INT NOT NULL,
			total_price INT NOT NULL,
			status VARCHAR(16) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_bookings_schedule (schedule_id)
		)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	_, err = db.Exec("DELETE FROM bookings")
	require.NoError(t, err)
	return db
}

func seedMember(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	members := repository.NewMemberRepo(db)
	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	id, err := members.Create(context.Background(), email, "integration", "pw123456", 4)
	require.NoError(t, err)
	return id
}

func TestConcurrentCreateSerializedByRowLocks(t *testing.T) {
	db := openTestDB(t)
	memberID := seedMember(t, db)

	svc := service.NewBookingService(
		repository.NewBookingRepo(db),
		repository.NewMemberRepo(db),
		nil,
	)
	scheduleID := uint64(time.Now().UnixNano() % 1_000_000_000)
	req := service.CreateBookingRequest{
		ScheduleID: scheduleID,
		MovieTitle: "Integration",
		CinemaName: "Test Hall",
		ShowDate:   "2026-09-01",
		ShowTime:   "19:30",
		Seats:      []string{"B5"},
		TotalPrice: 1200,
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), memberID, req)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var conflict *service.SeatConflictError
		require.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, wins)

	seats, err := svc.OccupiedSeats(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B5"}, seats)
}

func TestBookingLifecycleAgainstMySQL(t *testing.T) {
	db := openTestDB(t)
	memberID := seedMember(t, db)

	repo := repository.NewBookingRepo(db)
	svc := service.NewBookingService(repo, repository.NewMemberRepo(db), nil)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, memberID, service.CreateBookingRequest{
		ScheduleID: uint64(time.Now().UnixNano() % 1_000_000_000),
		MovieTitle: "Integration",
		CinemaName: "Test Hall",
		ShowDate:   "2026-09-01",
		ShowTime:   "21:00",
		Seats:      []string{"C1", "C2"},
		TotalPrice: 2400,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)

	require.NoError(t, svc.PayBooking(ctx, memberID, b.ID))
	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPaid, stored.Status)

	require.NoError(t, svc.CancelBooking(ctx, memberID, b.ID))
	assert.ErrorIs(t, svc.PayBooking(ctx, memberID, b.ID), service.ErrInvalidStateTransition)

	mine, err := svc.ListBookings(ctx, memberID)
	require.NoError(t, err)
	require.NotEmpty(t, mine)
	assert.Equal(t, b.ID, mine[0].ID)
}
