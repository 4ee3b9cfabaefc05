package timetable

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps slots in a map, for tests and embedded dev runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

// NewMemoryRepository creates an empty in-memory repo.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[string]Slot)}
}

func (r *MemoryRepository) Insert(_ context.Context, slot Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	return nil
}

func (r *MemoryRepository) ListByRoomDay(_ context.Context, roomID string, day Day) ([]Slot, error) {
	return r.filter(func(s Slot) bool { return s.RoomID == roomID && s.Day == day }), nil
}

func (r *MemoryRepository) ListByInstructorDay(_ context.Context, instructorID string, day Day) ([]Slot, error) {
	return r.filter(func(s Slot) bool { return s.InstructorID == instructorID && s.Day == day }), nil
}

func (r *MemoryRepository) filter(keep func(Slot) bool) []Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []Slot
	for _, slot := range r.slots {
		if keep(slot) {
			res = append(res, slot)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Start < res[j].Start })
	return res
}
