package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"rollcall/internal/directory"
)

type stubCounter map[string]int

func (s stubCounter) CountByCourse(_ context.Context, courseID string) (int, error) {
	return s[courseID], nil
}

var noon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestRecord_Duplicate(t *testing.T) {
	dir := directory.NewMemory()
	dir.Enroll("stu-1", "CS101")
	svc := NewService(NewMemoryRepository(dir, stubCounter{"CS101": 1}))
	ctx := context.Background()

	id, err := svc.Record(ctx, "stu-1", "tok-1", "CS101", noon)
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a record id")
	}
	if _, err := svc.Record(ctx, "stu-1", "tok-1", "CS101", noon); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same student, different session: fine.
	if _, err := svc.Record(ctx, "stu-1", "tok-2", "CS101", noon); err != nil {
		t.Fatalf("second session record failed: %v", err)
	}
}

func TestSummaryFor_ZeroSessions(t *testing.T) {
	dir := directory.NewMemory()
	dir.Enroll("stu-1", "CS101")
	svc := NewService(NewMemoryRepository(dir, stubCounter{}))

	summary, err := svc.SummaryFor(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary) != 1 {
		t.Fatalf("expected one course row, got %d", len(summary))
	}
	row := summary[0]
	if row.TotalSessions != 0 || row.AttendedSessions != 0 {
		t.Errorf("expected zero counts, got %+v", row)
	}
	if row.Percentage != 0 {
		t.Errorf("zero held sessions must report 0%%, got %v", row.Percentage)
	}
}

func TestSummaryFor_Percentages(t *testing.T) {
	dir := directory.NewMemory()
	dir.Enroll("stu-1", "CS101")
	dir.Enroll("stu-1", "CS201")
	svc := NewService(NewMemoryRepository(dir, stubCounter{"CS101": 4, "CS201": 2}))
	ctx := context.Background()

	for _, tok := range []string{"a", "b", "c"} {
		if _, err := svc.Record(ctx, "stu-1", tok, "CS101", noon); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	summary, err := svc.SummaryFor(ctx, "stu-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected two course rows, got %+v", summary)
	}
	if summary[0].CourseID != "CS101" || summary[0].Percentage != 75 {
		t.Errorf("CS101 expected 3/4 = 75%%, got %+v", summary[0])
	}
	if summary[1].CourseID != "CS201" || summary[1].Percentage != 0 {
		t.Errorf("CS201 expected 0/2 = 0%%, got %+v", summary[1])
	}
}

func TestReportFor(t *testing.T) {
	dir := directory.NewMemory()
	dir.Enroll("stu-1", "CS101")
	dir.Enroll("stu-2", "CS101")
	svc := NewService(NewMemoryRepository(dir, stubCounter{"CS101": 2}))
	ctx := context.Background()

	if _, err := svc.Record(ctx, "stu-1", "tok-1", "CS101", noon); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := svc.Record(ctx, "stu-1", "tok-2", "CS101", noon); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	report, err := svc.ReportFor(ctx, "CS101")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected both enrolled students, got %+v", report)
	}
	if report[0].StudentID != "stu-1" || report[0].Percentage != 100 {
		t.Errorf("stu-1 expected 2/2 = 100%%, got %+v", report[0])
	}
	if report[1].StudentID != "stu-2" || report[1].Percentage != 0 {
		t.Errorf("stu-2 expected 0/2 = 0%%, got %+v", report[1])
	}
}
