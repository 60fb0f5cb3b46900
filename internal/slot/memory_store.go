package slot

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the slot inventory in process memory. It backs dev mode
// and tests; the mutex gives Claim the same exactly-one-winner guarantee the
// guarded UPDATE gives the Postgres store.
type MemoryStore struct {
	mu     sync.Mutex
	slots  map[int64]*Slot
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots:  make(map[int64]*Slot),
		nextID: 1,
	}
}

func (st *MemoryStore) sorted(keep func(*Slot) bool) []Slot {
	var result []Slot
	for _, s := range st.slots {
		if keep(s) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result
}

func (st *MemoryStore) ListAvailable(ctx context.Context, from, to time.Time) ([]Slot, error) {
	start := DayStart(from)
	end := DayStart(to).AddDate(0, 0, 1)

	st.mu.Lock()
	defer st.mu.Unlock()

	return st.sorted(func(s *Slot) bool {
		return s.Available && !s.ScheduledAt.Before(start) && s.ScheduledAt.Before(end)
	}), nil
}

func (st *MemoryStore) ListBooked(ctx context.Context) ([]Slot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.sorted(func(s *Slot) bool { return !s.Available }), nil
}

func (st *MemoryStore) Claim(ctx context.Context, at time.Time, name, phone string, m Modality) (bool, error) {
	at = AtMinute(at)

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, s := range st.slots {
		if s.Available && s.ScheduledAt.Equal(at) {
			now := time.Now()
			s.Available = false
			s.PatientName = &name
			s.PatientPhone = &phone
			s.Modality = &m
			s.BookedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (st *MemoryStore) Release(ctx context.Context, id int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.slots[id]
	if !ok {
		return nil
	}
	s.Available = true
	s.PatientName = nil
	s.PatientPhone = nil
	s.Modality = nil
	s.BookedAt = nil
	return nil
}

func (st *MemoryStore) Insert(ctx context.Context, at time.Time) (*Slot, error) {
	at = AtMinute(at)

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, s := range st.slots {
		if s.ScheduledAt.Equal(at) {
			return nil, ErrDuplicateSlot
		}
	}

	s := &Slot{
		ID:          st.nextID,
		ScheduledAt: at,
		Available:   true,
		CreatedAt:   time.Now(),
	}
	st.nextID++
	st.slots[s.ID] = s

	cp := *s
	return &cp, nil
}

func (st *MemoryStore) DeleteOne(ctx context.Context, id int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.slots, id)
	return nil
}

func (st *MemoryStore) DeleteMany(ctx context.Context, ids []int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, id := range ids {
		delete(st.slots, id)
	}
	return nil
}
