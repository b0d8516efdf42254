package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pathakanu/reminderbot/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := db.AutoMigrate(&model.Reminder{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return New(db)
}

func seed(t *testing.T, s *Store, r model.Reminder) model.Reminder {
	t.Helper()
	if err := s.Create(context.Background(), &r); err != nil {
		t.Fatalf("seed reminder: %v", err)
	}
	return r
}

func strPtr(s string) *string { return &s }

var baseDate = time.Date(2023, 10, 15, 10, 0, 0, 0, time.UTC)

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	r := model.Reminder{Text: "Buy milk", Date: baseDate, UserID: "u1", Completed: true}
	if err := s.Create(context.Background(), &r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if r.Completed {
		t.Fatalf("new reminders must not be completed")
	}
	if r.Priority != model.DefaultPriority {
		t.Fatalf("Priority = %q, want %q", r.Priority, model.DefaultPriority)
	}

	other := seed(t, s, model.Reminder{Text: "Call mom", Date: baseDate, UserID: "u1"})
	if other.ID == r.ID {
		t.Fatalf("ids must be unique, both %d", r.ID)
	}
}

func TestListActiveAndCompletedPartition(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	a := seed(t, s, model.Reminder{Text: "a", Date: baseDate, UserID: "u1"})
	b := seed(t, s, model.Reminder{Text: "b", Date: baseDate, UserID: "u1"})
	seed(t, s, model.Reminder{Text: "c", Date: baseDate, UserID: "u2"})

	if _, err := s.Complete(ctx, b.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	active, err := s.ListActive(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("ListActive = %+v, want only %d", active, a.ID)
	}

	done, err := s.ListCompleted(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	if len(done) != 1 || done[0].ID != b.ID || !done[0].Completed {
		t.Fatalf("ListCompleted = %+v, want only %d", done, b.ID)
	}

	none, err := s.ListActive(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListActive(nobody): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty listing, got %+v", none)
	}
}

func TestUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r := seed(t, s, model.Reminder{Text: "old", Date: baseDate, Recurrence: "daily", Priority: "high", UserID: "u1"})

	updated, err := s.Update(ctx, r.ID, model.ReminderPatch{Text: strPtr("x")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Text != "x" {
		t.Fatalf("Text = %q, want x", updated.Text)
	}
	if !updated.Date.Equal(baseDate) || updated.Recurrence != "daily" || updated.Priority != "high" || updated.UserID != "u1" {
		t.Fatalf("unexpected changes to other fields: %+v", updated)
	}

	again, err := s.Update(ctx, r.ID, model.ReminderPatch{Text: strPtr("x")})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if again.Text != "x" || !again.Date.Equal(baseDate) {
		t.Fatalf("repeated update changed state: %+v", again)
	}

	newDate := baseDate.Add(48 * time.Hour)
	moved, err := s.Update(ctx, r.ID, model.ReminderPatch{Date: &newDate, Priority: strPtr("low")})
	if err != nil {
		t.Fatalf("Update date: %v", err)
	}
	if !moved.Date.Equal(newDate) || moved.Priority != "low" || moved.Text != "x" {
		t.Fatalf("unexpected reminder after date update: %+v", moved)
	}
}

func TestOperationsOnMissingIDReturnNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r := seed(t, s, model.Reminder{Text: "keep", Date: baseDate, UserID: "u1"})
	missing := r.ID + 100

	if _, err := s.Update(ctx, missing, model.ReminderPatch{Text: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete missing: got %v, want ErrNotFound", err)
	}
	if _, err := s.Snooze(ctx, missing, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Snooze missing: got %v, want ErrNotFound", err)
	}
	if _, err := s.Complete(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Complete missing: got %v, want ErrNotFound", err)
	}

	got, err := s.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "keep" || !got.Date.Equal(baseDate) {
		t.Fatalf("store changed by failed operations: %+v", got)
	}
	active, _ := s.ListActive(ctx, "u1")
	if len(active) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(active))
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r := seed(t, s, model.Reminder{Text: "gone", Date: baseDate, UserID: "u1"})
	if err := s.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestSnoozeIsAdditive(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	a := seed(t, s, model.Reminder{Text: "a", Date: baseDate, UserID: "u1"})
	b := seed(t, s, model.Reminder{Text: "b", Date: baseDate, UserID: "u1"})

	snoozed, err := s.Snooze(ctx, a.ID, 10)
	if err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if want := baseDate.Add(10 * time.Minute); !snoozed.Date.Equal(want) {
		t.Fatalf("snoozed date = %v, want %v", snoozed.Date, want)
	}
	if _, err := s.Snooze(ctx, a.ID, 25); err != nil {
		t.Fatalf("second Snooze: %v", err)
	}
	if _, err := s.Snooze(ctx, b.ID, 35); err != nil {
		t.Fatalf("combined Snooze: %v", err)
	}

	gotA, _ := s.Get(ctx, a.ID)
	gotB, _ := s.Get(ctx, b.ID)
	if !gotA.Date.Equal(gotB.Date) {
		t.Fatalf("snooze(10)+snooze(25) = %v, snooze(35) = %v", gotA.Date, gotB.Date)
	}
	if !gotA.Date.Equal(baseDate.Add(35 * time.Minute)) {
		t.Fatalf("persisted date = %v", gotA.Date)
	}
}

func TestSnoozeNegativeAndRange(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	r := seed(t, s, model.Reminder{Text: "a", Date: baseDate, UserID: "u1"})

	snoozed, err := s.Snooze(ctx, r.ID, -15)
	if err != nil {
		t.Fatalf("Snooze(-15): %v", err)
	}
	if want := baseDate.Add(-15 * time.Minute); !snoozed.Date.Equal(want) {
		t.Fatalf("snoozed date = %v, want %v", snoozed.Date, want)
	}

	for _, minutes := range []int{MaxSnoozeMinutes + 1, -MaxSnoozeMinutes - 1, 200000000} {
		if _, err := s.Snooze(ctx, r.ID, minutes); !errors.Is(err, ErrSnoozeRange) {
			t.Fatalf("Snooze(%d) = %v, want ErrSnoozeRange", minutes, err)
		}
	}
	got, _ := s.Get(ctx, r.ID)
	if !got.Date.Equal(baseDate.Add(-15 * time.Minute)) {
		t.Fatalf("out of range snooze changed the date: %v", got.Date)
	}
}
