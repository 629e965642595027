package postgres_test

import (
	"context"
	"testing"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		bookingID := int32(7)
		n := &domain.Notification{
			UserID:     "user-1",
			BookingID:  &bookingID,
			Title:      "Booking overdue",
			Message:    "please return the bike",
			Attributes: map[string]string{"type": "OVERDUE"},
		}
		mock.ExpectQuery("INSERT INTO notifications").
			WithArgs("user-1", int32(7), "Booking overdue", "please return the bike", false, []byte(`{"type":"OVERDUE"}`), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int32(11), n.ID)
		assert.False(t, n.CreatedOn.IsZero())
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM notifications`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		rows := sqlmock.NewRows([]string{"id", "user_id", "booking_id", "title", "message", "is_read", "attributes", "created_on"}).
			AddRow(2, "user-1", 7, "Booking overdue", "m", false, []byte(`{"tier":"standard"}`), time.Now()).
			AddRow(1, "user-1", 7, "Booking confirmed", "m", true, nil, time.Now())
		mock.ExpectQuery("FROM notifications WHERE user_id").
			WithArgs("user-1", int32(20), int32(0)).
			WillReturnRows(rows)

		notes, count, err := repo.List(ctx, "user-1", 20, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(2), count)
		require.Len(t, notes, 2)
		assert.Equal(t, "standard", notes[0].Attributes["tier"])
		assert.True(t, notes[1].IsRead)
	})

	t.Run("MarkAsRead not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read").
			WithArgs(int32(99), "user-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkAsRead(ctx, 99, "user-1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
