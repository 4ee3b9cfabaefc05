package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rollcall/internal/clock"
	"rollcall/internal/directory"
	"rollcall/internal/ledger"
	"rollcall/internal/timetable"
)

// mondayQuarterPast is 09:15 on a Monday, inside the CS101 slot the
// fixture schedules for 09:00-10:00.
var mondayQuarterPast = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

type fixture struct {
	clk  *clock.Fixed
	dir  *directory.Memory
	tt   *timetable.Service
	repo *MemoryRepository
	led  *ledger.Service
	svc  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFixed(mondayQuarterPast)

	dir := directory.NewMemory()
	dir.AddCourse("CS101")
	dir.AddCourse("CS102")
	dir.AddDivision("D1")
	dir.AddRoom("R1")
	dir.Assign("prof-a", "CS101")
	dir.Assign("prof-a", "CS102")
	dir.Enroll("stu-1", "CS101")
	dir.Enroll("stu-2", "CS101")

	tt := timetable.NewService(timetable.NewMemoryRepository(), dir, clk)
	start, _ := timetable.ParseTimeOfDay("09:00")
	end, _ := timetable.ParseTimeOfDay("10:00")
	if _, err := tt.ProposeSlot(context.Background(), timetable.Slot{
		CourseID:     "CS101",
		DivisionID:   "D1",
		InstructorID: "prof-a",
		Day:          timetable.Monday,
		Start:        start,
		End:          end,
		RoomID:       "R1",
	}); err != nil {
		t.Fatalf("fixture slot rejected: %v", err)
	}

	repo := NewMemoryRepository()
	led := ledger.NewService(ledger.NewMemoryRepository(dir, repo))
	svc := NewService(repo, nil, tt, dir, led, clk, 0)
	return &fixture{clk: clk, dir: dir, tt: tt, repo: repo, led: led, svc: svc}
}

func TestMint_RequiresActiveSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint during active slot failed: %v", err)
	}
	if len(view.Token) != 32 {
		t.Errorf("expected 32-char token, got %q", view.Token)
	}
	if want := mondayQuarterPast.Add(15 * time.Minute); !view.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %s, want %s", view.ExpiresAt, want)
	}

	// Assigned course with no slot running right now.
	if _, err := f.svc.Mint(ctx, "CS102", "prof-a"); !errors.Is(err, ErrNotCurrentlyScheduled) {
		t.Errorf("expected ErrNotCurrentlyScheduled, got %v", err)
	}

	// Right course, but after the slot has ended.
	f.clk.Advance(time.Hour)
	if _, err := f.svc.Mint(ctx, "CS101", "prof-a"); !errors.Is(err, ErrNotCurrentlyScheduled) {
		t.Errorf("expected ErrNotCurrentlyScheduled after slot end, got %v", err)
	}
}

func TestRedeem_WindowBoundary(t *testing.T) {
	t.Run("inside window", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.Mint(context.Background(), "CS101", "prof-a")
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		f.clk.Advance(14*time.Minute + 59*time.Second)
		if _, err := f.svc.Redeem(context.Background(), view.Token, "stu-1"); err != nil {
			t.Fatalf("redeem at 14m59s failed: %v", err)
		}
	})

	t.Run("past window", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.Mint(context.Background(), "CS101", "prof-a")
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		f.clk.Advance(15*time.Minute + time.Second)
		if _, err := f.svc.Redeem(context.Background(), view.Token, "stu-1"); !errors.Is(err, ErrInvalidOrExpired) {
			t.Fatalf("expected ErrInvalidOrExpired at 15m01s, got %v", err)
		}
	})
}

func TestRedeem_UnknownToken(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Redeem(context.Background(), Token("deadbeefdeadbeefdeadbeefdeadbeef"), "stu-1"); !errors.Is(err, ErrInvalidOrExpired) {
		t.Errorf("expected ErrInvalidOrExpired for unknown token, got %v", err)
	}
}

func TestRedeem_EnrollmentGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	// Valid, unexpired token, but the student is not in CS101.
	if _, err := f.svc.Redeem(ctx, view.Token, "outsider"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestRedeem_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := f.svc.Redeem(ctx, view.Token, "stu-1"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if _, err := f.svc.Redeem(ctx, view.Token, "stu-1"); !errors.Is(err, ErrAlreadyMarked) {
		t.Errorf("expected ErrAlreadyMarked, got %v", err)
	}
	// A different student still gets through.
	if _, err := f.svc.Redeem(ctx, view.Token, "stu-2"); err != nil {
		t.Errorf("second student's redeem failed: %v", err)
	}
}

func TestRedeem_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(ctx, view.Token, "stu-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyMarked) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one redemption to land, got %d", succeeded)
	}

	summary, err := f.led.SummaryFor(ctx, "stu-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	for _, row := range summary {
		if row.CourseID == "CS101" && row.AttendedSessions != 1 {
			t.Fatalf("ledger holds %d records, want 1", row.AttendedSessions)
		}
	}
}

func TestRedeem_SurvivesSlotDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// The slot only gates minting; deleting it does not revoke the session.
	active, err := f.tt.ActiveSlotsFor(ctx, "prof-a", f.clk.Now())
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one active slot, got %v (%v)", active, err)
	}
	if err := f.tt.DeleteSlot(ctx, active[0].ID, "prof-a", false); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.svc.Redeem(ctx, view.Token, "stu-1"); err != nil {
		t.Errorf("redeem after slot deletion failed: %v", err)
	}
}

func TestDisplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := f.svc.Display(ctx, view.Token, "prof-a", false); err != nil {
		t.Errorf("owner display failed: %v", err)
	}
	if _, err := f.svc.Display(ctx, view.Token, "prof-b", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for another instructor, got %v", err)
	}
	if _, err := f.svc.Display(ctx, view.Token, "registrar", true); err != nil {
		t.Errorf("admin display failed: %v", err)
	}
	if _, err := f.svc.Display(ctx, Token("deadbeefdeadbeefdeadbeefdeadbeef"), "prof-a", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	f.clk.Advance(16 * time.Minute)
	if _, err := f.svc.Display(ctx, view.Token, "prof-a", false); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

// TestEndToEnd walks the whole flow: slot, mint, scan, duplicate scan,
// outsider scan.
func TestEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Mint(ctx, "CS101", "prof-a")
	if err != nil {
		t.Fatalf("mint at 09:15 failed: %v", err)
	}

	if _, err := f.svc.Redeem(ctx, view.Token, "stu-1"); err != nil {
		t.Fatalf("enrolled student's scan failed: %v", err)
	}
	if _, err := f.svc.Redeem(ctx, view.Token, "stu-1"); !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("expected ErrAlreadyMarked on rescan, got %v", err)
	}
	if _, err := f.svc.Redeem(ctx, view.Token, "lurker"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}

	summary, err := f.led.SummaryFor(ctx, "stu-1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary) != 1 || summary[0].CourseID != "CS101" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary[0].TotalSessions != 1 || summary[0].AttendedSessions != 1 || summary[0].Percentage != 100 {
		t.Fatalf("expected 1/1 = 100%%, got %+v", summary[0])
	}
}
