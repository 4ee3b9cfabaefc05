package directory

import (
	"context"
	"sort"
	"sync"
)

// Memory is a map-backed directory for tests and single-node dev runs.
type Memory struct {
	mu          sync.RWMutex
	courses     map[string]bool
	divisions   map[string]bool
	rooms       map[string]bool
	enrollments map[[2]string]bool // (studentID, courseID)
	assignments map[[2]string]bool // (instructorID, courseID)
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		courses:     make(map[string]bool),
		divisions:   make(map[string]bool),
		rooms:       make(map[string]bool),
		enrollments: make(map[[2]string]bool),
		assignments: make(map[[2]string]bool),
	}
}

// AddCourse registers a course.
func (m *Memory) AddCourse(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id] = true
}

// AddDivision registers a division.
func (m *Memory) AddDivision(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.divisions[id] = true
}

// AddRoom registers a room.
func (m *Memory) AddRoom(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[id] = true
}

// Enroll registers a student in a course.
func (m *Memory) Enroll(studentID, courseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[[2]string{studentID, courseID}] = true
}

// Assign registers an instructor as teaching a course.
func (m *Memory) Assign(instructorID, courseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[[2]string{instructorID, courseID}] = true
}

func (m *Memory) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enrollments[[2]string{studentID, courseID}], nil
}

func (m *Memory) IsAssigned(_ context.Context, instructorID, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignments[[2]string{instructorID, courseID}], nil
}

func (m *Memory) CourseExists(_ context.Context, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.courses[courseID], nil
}

func (m *Memory) DivisionExists(_ context.Context, divisionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.divisions[divisionID], nil
}

func (m *Memory) RoomExists(_ context.Context, roomID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[roomID], nil
}

func (m *Memory) CoursesFor(_ context.Context, studentID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var courses []string
	for key := range m.enrollments {
		if key[0] == studentID {
			courses = append(courses, key[1])
		}
	}
	sort.Strings(courses)
	return courses, nil
}

func (m *Memory) StudentsIn(_ context.Context, courseID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var students []string
	for key := range m.enrollments {
		if key[1] == courseID {
			students = append(students, key[0])
		}
	}
	sort.Strings(students)
	return students, nil
}
