// Package directory is the read-only view of rosters and catalog data
// maintained by the surrounding application. The attendance core only ever
// asks existence and membership questions; it never writes here.
package directory

import "context"

// Directory answers the referential questions the core depends on.
type Directory interface {
	// IsEnrolled reports whether the student is registered in the course.
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	// IsAssigned reports whether the instructor teaches the course.
	IsAssigned(ctx context.Context, instructorID, courseID string) (bool, error)
	// CourseExists, DivisionExists and RoomExists validate foreign
	// references before a slot proposal is conflict-checked.
	CourseExists(ctx context.Context, courseID string) (bool, error)
	DivisionExists(ctx context.Context, divisionID string) (bool, error)
	RoomExists(ctx context.Context, roomID string) (bool, error)
	// CoursesFor lists the courses the student is enrolled in.
	CoursesFor(ctx context.Context, studentID string) ([]string, error)
	// StudentsIn lists the students enrolled in the course.
	StudentsIn(ctx context.Context, courseID string) ([]string, error)
}
