package model

import "time"

// DefaultPriority is applied when a caller does not supply one.
const DefaultPriority = "low"

// Reminder represents a time-based reminder owned by a chat user.
type Reminder struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Date       time.Time `gorm:"not null" json:"date"`
	Recurrence string    `gorm:"type:text" json:"recurrence"`
	Priority   string    `gorm:"not null;default:low" json:"priority"`
	UserID     string    `gorm:"index;not null" json:"userId"`
	Completed  bool      `gorm:"not null;default:false;index" json:"completed"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ReminderPatch carries a partial update. Nil fields are left untouched.
type ReminderPatch struct {
	Text       *string
	Date       *time.Time
	Recurrence *string
	Priority   *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ReminderPatch) IsEmpty() bool {
	return p.Text == nil && p.Date == nil && p.Recurrence == nil && p.Priority == nil
}

// Columns returns the column/value pairs present in the patch.
func (p ReminderPatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Text != nil {
		cols["text"] = *p.Text
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Recurrence != nil {
		cols["recurrence"] = *p.Recurrence
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	return cols
}
