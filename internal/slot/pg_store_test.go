package slot

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PgStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgStore(mock), mock
}

func slotRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "scheduled_at", "available", "patient_name", "patient_phone", "modality", "created_at", "booked_at",
	})
}

func TestPgStoreClaimIsOneGuardedUpdate(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)

	mock.ExpectExec(`UPDATE slots`).
		WithArgs(at, "Maria Silva", "85999998888", "in_person").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := st.Claim(context.Background(), at, "Maria Silva", "85999998888", ModalityInPerson)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreClaimLostRace(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)

	// Zero rows affected means another caller already took the slot.
	mock.ExpectExec(`UPDATE slots`).
		WithArgs(at, "Maria Silva", "85999998888", "online").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := st.Claim(context.Background(), at, "Maria Silva", "85999998888", ModalityOnline)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreClaimTruncatesToMinute(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 12, 18, 14, 0, 42, 999, time.Local)

	mock.ExpectExec(`UPDATE slots`).
		WithArgs(time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local), "Ana", "11988887777", "online").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := st.Claim(context.Background(), at, "Ana", "11988887777", ModalityOnline)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreInsertDuplicate(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)

	mock.ExpectQuery(`INSERT INTO slots`).
		WithArgs(at).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := st.Insert(context.Background(), at)
	require.ErrorIs(t, err, ErrDuplicateSlot)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreInsertReturnsSlot(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)
	created := time.Now()

	mock.ExpectQuery(`INSERT INTO slots`).
		WithArgs(at).
		WillReturnRows(slotRows().AddRow(int64(7), at, true, nil, nil, nil, created, nil))

	s, err := st.Insert(context.Background(), at)
	require.NoError(t, err)
	require.Equal(t, int64(7), s.ID)
	require.True(t, s.Available)
	require.Nil(t, s.Modality)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreListAvailableMapsRows(t *testing.T) {
	st, mock := newMockStore(t)
	from := time.Date(2026, 12, 10, 9, 30, 0, 0, time.Local)
	to := from.AddDate(0, 0, 14)

	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)
	mock.ExpectQuery(`SELECT (.+) FROM slots`).
		WithArgs(DayStart(from), DayStart(to).AddDate(0, 0, 1)).
		WillReturnRows(slotRows().AddRow(int64(3), at, true, nil, nil, nil, time.Now(), nil))

	open, err := st.ListAvailable(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, int64(3), open[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreListBookedMapsModality(t *testing.T) {
	st, mock := newMockStore(t)

	name := "Maria Silva"
	phone := "85999998888"
	modality := "in_person"
	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)
	bookedAt := at.Add(-48 * time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM slots`).
		WillReturnRows(slotRows().AddRow(int64(3), at, false, &name, &phone, &modality, time.Now(), &bookedAt))

	booked, err := st.ListBooked(context.Background())
	require.NoError(t, err)
	require.Len(t, booked, 1)
	require.NotNil(t, booked[0].Modality)
	require.Equal(t, ModalityInPerson, *booked[0].Modality)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreRelease(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE slots`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.Release(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreDeleteMany(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM slots`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, st.DeleteMany(context.Background(), []int64{1, 2, 3}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreDeleteManyEmptySkipsQuery(t *testing.T) {
	st, mock := newMockStore(t)

	require.NoError(t, st.DeleteMany(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
