package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pathakanu/reminderbot/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an operation references a reminder id that does not exist.
var ErrNotFound = errors.New("reminder not found")

// MaxSnoozeMinutes bounds a single snooze in either direction (one year).
const MaxSnoozeMinutes = 525600

// ErrSnoozeRange is returned for snoozes beyond MaxSnoozeMinutes.
var ErrSnoozeRange = errors.New("snooze out of range")

// Store persists reminders through GORM.
type Store struct {
	db *gorm.DB
}

// New wraps an opened and migrated database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts r, assigning its id. Completed is always reset to false.
func (s *Store) Create(ctx context.Context, r *model.Reminder) error {
	r.ID = 0
	r.Completed = false
	if r.Priority == "" {
		r.Priority = model.DefaultPriority
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Get loads one reminder by id.
func (s *Store) Get(ctx context.Context, id uint) (*model.Reminder, error) {
	return find(s.db.WithContext(ctx), id)
}

// ListActive returns the user's reminders that are not completed.
func (s *Store) ListActive(ctx context.Context, userID string) ([]model.Reminder, error) {
	return s.list(ctx, userID, false)
}

// ListCompleted returns the user's completed reminders.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]model.Reminder, error) {
	return s.list(ctx, userID, true)
}

func (s *Store) list(ctx context.Context, userID string, completed bool) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, completed).
		Order("id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// Update merges the fields present in patch into the reminder with the given id.
func (s *Store) Update(ctx context.Context, id uint, patch model.ReminderPatch) (*model.Reminder, error) {
	var updated *model.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := find(tx, id)
		if err != nil {
			return err
		}
		if !patch.IsEmpty() {
			if err := tx.Model(r).Updates(patch.Columns()).Error; err != nil {
				return fmt.Errorf("update reminder %d: %w", id, err)
			}
		}
		updated, err = find(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes the reminder with the given id.
func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Reminder{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete reminder %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Snooze shifts the reminder's date by minutes. Negative values move it earlier.
func (s *Store) Snooze(ctx context.Context, id uint, minutes int) (*model.Reminder, error) {
	if minutes > MaxSnoozeMinutes || minutes < -MaxSnoozeMinutes {
		return nil, fmt.Errorf("snooze reminder %d by %d minutes: %w", id, minutes, ErrSnoozeRange)
	}
	var snoozed *model.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := find(tx, id)
		if err != nil {
			return err
		}
		date := r.Date.Add(time.Duration(minutes) * time.Minute)
		if err := tx.Model(r).Update("date", date).Error; err != nil {
			return fmt.Errorf("snooze reminder %d: %w", id, err)
		}
		r.Date = date
		snoozed = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snoozed, nil
}

// Complete marks the reminder as resolved so it moves to the user's history.
func (s *Store) Complete(ctx context.Context, id uint) (*model.Reminder, error) {
	var completed *model.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := find(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(r).Update("completed", true).Error; err != nil {
			return fmt.Errorf("complete reminder %d: %w", id, err)
		}
		r.Completed = true
		completed = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func find(db *gorm.DB, id uint) (*model.Reminder, error) {
	var r model.Reminder
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reminder %d: %w", id, err)
	}
	return &r, nil
}
