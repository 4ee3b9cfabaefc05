package timetable

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/clock"
	"rollcall/internal/directory"
)

// Repository persists slots. Implementations return (nil, nil) from Get
// when the slot is absent.
type Repository interface {
	Insert(ctx context.Context, slot Slot) error
	Get(ctx context.Context, id string) (*Slot, error)
	Delete(ctx context.Context, id string) error
	ListByRoomDay(ctx context.Context, roomID string, day Day) ([]Slot, error)
	ListByInstructorDay(ctx context.Context, instructorID string, day Day) ([]Slot, error)
}

// Service validates, conflict-checks, and stores timetable slots.
type Service struct {
	repo  Repository
	dir   directory.Directory
	clock clock.Clock

	// locks serializes check-then-insert per (room,day) and
	// (instructor,day) key so two concurrent proposals for the same
	// free interval cannot both pass the conflict check.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a timetable service.
func NewService(repo Repository, dir directory.Directory, clk clock.Clock) *Service {
	return &Service{
		repo:  repo,
		dir:   dir,
		clock: clk,
		locks: make(map[string]*sync.Mutex),
	}
}

// ProposeSlot admits a new slot if its references exist and it overlaps no
// stored slot for the same room or instructor on the same day. It returns
// the new slot ID.
func (s *Service) ProposeSlot(ctx context.Context, slot Slot) (string, error) {
	if err := validate(slot); err != nil {
		return "", err
	}
	if err := s.checkReferences(ctx, slot); err != nil {
		return "", err
	}

	slot.ID = uuid.NewString()
	slot.CreatedAt = s.clock.Now()

	roomKey := "room|" + slot.RoomID + "|" + slot.Day.String()
	instKey := "inst|" + slot.InstructorID + "|" + slot.Day.String()
	unlock := s.lockKeys(roomKey, instKey)
	defer unlock()

	byRoom, err := s.repo.ListByRoomDay(ctx, slot.RoomID, slot.Day)
	if err != nil {
		return "", err
	}
	for _, other := range byRoom {
		if overlaps(slot.Start, slot.End, other.Start, other.End) {
			return "", &ConflictError{Kind: RoomBooked, ExistingSlotID: other.ID}
		}
	}

	byInstructor, err := s.repo.ListByInstructorDay(ctx, slot.InstructorID, slot.Day)
	if err != nil {
		return "", err
	}
	for _, other := range byInstructor {
		if overlaps(slot.Start, slot.End, other.Start, other.End) {
			return "", &ConflictError{Kind: InstructorBooked, ExistingSlotID: other.ID}
		}
	}

	if err := s.repo.Insert(ctx, slot); err != nil {
		return "", err
	}
	return slot.ID, nil
}

// DeleteSlot removes a slot. Only the instructor who created it, or an
// admin, may do so.
func (s *Service) DeleteSlot(ctx context.Context, slotID, requesterID string, requesterIsAdmin bool) error {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrNotFound
	}
	if !requesterIsAdmin && slot.InstructorID != requesterID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, slotID)
}

// ActiveSlotsFor returns the instructor's slots whose half-open interval
// contains the given instant. The no-overlap invariant means the result
// holds at most one slot.
func (s *Service) ActiveSlotsFor(ctx context.Context, instructorID string, at time.Time) ([]Slot, error) {
	day := DayOf(at)
	tod := TimeOfDayAt(at)
	slots, err := s.repo.ListByInstructorDay(ctx, instructorID, day)
	if err != nil {
		return nil, err
	}
	var active []Slot
	for _, slot := range slots {
		if contains(slot.Start, slot.End, tod) {
			active = append(active, slot)
		}
	}
	return active, nil
}

func validate(slot Slot) error {
	switch {
	case slot.CourseID == "":
		return &ValidationError{Field: "course_id", Reason: "required"}
	case slot.DivisionID == "":
		return &ValidationError{Field: "division_id", Reason: "required"}
	case slot.InstructorID == "":
		return &ValidationError{Field: "instructor_id", Reason: "required"}
	case slot.RoomID == "":
		return &ValidationError{Field: "room_id", Reason: "required"}
	case !slot.Day.Valid():
		return &ValidationError{Field: "day", Reason: "must be 1 (Monday) through 7 (Sunday)"}
	case slot.Start >= slot.End:
		return &ValidationError{Field: "start", Reason: "must be before end"}
	}
	return nil
}

func (s *Service) checkReferences(ctx context.Context, slot Slot) error {
	if ok, err := s.dir.CourseExists(ctx, slot.CourseID); err != nil {
		return err
	} else if !ok {
		return &ReferentialError{Kind: "course", ID: slot.CourseID}
	}
	if ok, err := s.dir.DivisionExists(ctx, slot.DivisionID); err != nil {
		return err
	} else if !ok {
		return &ReferentialError{Kind: "division", ID: slot.DivisionID}
	}
	if ok, err := s.dir.RoomExists(ctx, slot.RoomID); err != nil {
		return err
	} else if !ok {
		return &ReferentialError{Kind: "room", ID: slot.RoomID}
	}
	if ok, err := s.dir.IsAssigned(ctx, slot.InstructorID, slot.CourseID); err != nil {
		return err
	} else if !ok {
		return &ReferentialError{Kind: "instructor assignment", ID: slot.InstructorID}
	}
	return nil
}

// lockKeys acquires the per-key mutexes in sorted order and returns the
// matching unlock.
func (s *Service) lockKeys(keys ...string) func() {
	sort.Strings(keys)
	held := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		s.mu.Lock()
		m, ok := s.locks[key]
		if !ok {
			m = &sync.Mutex{}
			s.locks[key] = m
		}
		s.mu.Unlock()
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
