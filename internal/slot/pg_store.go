package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// db is the subset of pgxpool.Pool the store needs; pgxmock satisfies it in tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgStore struct {
	db db
}

func NewPgStore(db db) *PgStore {
	return &PgStore{db: db}
}

const slotColumns = `id, scheduled_at, available, patient_name, patient_phone, modality, created_at, booked_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var modality *string

	err := row.Scan(
		&s.ID,
		&s.ScheduledAt,
		&s.Available,
		&s.PatientName,
		&s.PatientPhone,
		&modality,
		&s.CreatedAt,
		&s.BookedAt,
	)
	if err != nil {
		return nil, err
	}

	if modality != nil {
		m := Modality(*modality)
		s.Modality = &m
	}
	return &s, nil
}

func (st *PgStore) collect(rows pgx.Rows) ([]Slot, error) {
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (st *PgStore) ListAvailable(ctx context.Context, from, to time.Time) ([]Slot, error) {
	start := DayStart(from)
	end := DayStart(to).AddDate(0, 0, 1)

	rows, err := st.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE available
		  AND scheduled_at >= $1
		  AND scheduled_at < $2
		ORDER BY scheduled_at
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return st.collect(rows)
}

func (st *PgStore) ListBooked(ctx context.Context) ([]Slot, error) {
	rows, err := st.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE NOT available
		ORDER BY scheduled_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	return st.collect(rows)
}

// Claim is a single guarded UPDATE; the affected-row count decides the race.
func (st *PgStore) Claim(ctx context.Context, at time.Time, name, phone string, m Modality) (bool, error) {
	tag, err := st.db.Exec(ctx, `
		UPDATE slots
		SET available = false,
		    patient_name = $2,
		    patient_phone = $3,
		    modality = $4,
		    booked_at = now()
		WHERE scheduled_at = $1
		  AND available
	`, AtMinute(at), name, phone, string(m))
	if err != nil {
		return false, fmt.Errorf("claim slot: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (st *PgStore) Release(ctx context.Context, id int64) error {
	_, err := st.db.Exec(ctx, `
		UPDATE slots
		SET available = true,
		    patient_name = NULL,
		    patient_phone = NULL,
		    modality = NULL,
		    booked_at = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

func (st *PgStore) Insert(ctx context.Context, at time.Time) (*Slot, error) {
	row := st.db.QueryRow(ctx, `
		INSERT INTO slots (scheduled_at)
		VALUES ($1)
		RETURNING `+slotColumns+`
	`, AtMinute(at))

	s, err := scanSlot(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("insert slot: %w", err)
	}
	return s, nil
}

func (st *PgStore) DeleteOne(ctx context.Context, id int64) error {
	_, err := st.db.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (st *PgStore) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := st.db.Exec(ctx, `DELETE FROM slots WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}
