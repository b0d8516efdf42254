package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pathakanu/reminderbot/internal/datetime"
	"github.com/pathakanu/reminderbot/internal/intent"
	"github.com/pathakanu/reminderbot/internal/metrics"
	"github.com/pathakanu/reminderbot/internal/model"
	"github.com/pathakanu/reminderbot/internal/store"
)

// Fixed replies. Store and validation errors never reach the user verbatim.
const (
	msgParseFailed    = "Failed to parse command. Please try again."
	msgUnknownCommand = "Unknown command"
	msgCreateFailed   = "Failed to create reminder. Please check the format and try again."
	msgListFailed     = "Failed to get reminders."
	msgUpdateFailed   = "Failed to update reminder. Please check the format and try again."
	msgDeleteFailed   = "Failed to delete reminder."
	msgSnoozeFailed   = "Failed to snooze reminder."
	msgHistoryFailed  = "Failed to get completed reminders."
	msgNoActive       = "You have no active reminders."
	msgNoCompleted    = "You have no completed reminders."
)

// Outcome labels for metrics.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// Interpreter turns free text into an Intent, or nil when it cannot.
type Interpreter interface {
	Interpret(ctx context.Context, text string) *intent.Intent
}

// Sender delivers one text message to a chat user.
type Sender interface {
	SendMessage(ctx context.Context, to, text string) error
}

// ReminderStore is the persistence the dispatcher needs.
type ReminderStore interface {
	Create(ctx context.Context, r *model.Reminder) error
	ListActive(ctx context.Context, userID string) ([]model.Reminder, error)
	ListCompleted(ctx context.Context, userID string) ([]model.Reminder, error)
	Update(ctx context.Context, id uint, patch model.ReminderPatch) (*model.Reminder, error)
	Delete(ctx context.Context, id uint) error
	Snooze(ctx context.Context, id uint, minutes int) (*model.Reminder, error)
}

// Bot dispatches chat commands to the reminder store and replies through a Sender.
// It holds no per-request state.
type Bot struct {
	store   ReminderStore
	interp  Interpreter
	sender  Sender
	dates   *datetime.Normalizer
	metrics *metrics.Metrics
	logger  *log.Logger
}

// New creates a fully configured Bot instance.
func New(st ReminderStore, interp Interpreter, sender Sender, dates *datetime.Normalizer, m *metrics.Metrics, logger *log.Logger) *Bot {
	return &Bot{
		store:   st,
		interp:  interp,
		sender:  sender,
		dates:   dates,
		metrics: m,
		logger:  logger,
	}
}

// WithSender returns a copy of b that replies through sender.
func (b *Bot) WithSender(sender Sender) *Bot {
	clone := *b
	clone.sender = sender
	return &clone
}

// HandleCommand interprets text from userID, runs it, and sends exactly one reply.
// The returned error only reports a failed send.
func (b *Bot) HandleCommand(ctx context.Context, text, userID string) error {
	return b.Dispatch(ctx, b.interp.Interpret(ctx, text), userID)
}

// RejectUnreadable answers a message whose body could not be decoded with
// the parse failure reply.
func (b *Bot) RejectUnreadable(ctx context.Context, userID string) error {
	return b.Dispatch(ctx, nil, userID)
}

// Dispatch runs an already interpreted command and sends exactly one reply.
func (b *Bot) Dispatch(ctx context.Context, in *intent.Intent, userID string) error {
	reply := b.reply(ctx, in, userID)
	if err := b.sender.SendMessage(ctx, userID, reply); err != nil {
		return fmt.Errorf("send reply to %s: %w", userID, err)
	}
	return nil
}

func (b *Bot) reply(ctx context.Context, in *intent.Intent, userID string) string {
	if in == nil || in.Action == "" {
		b.metrics.ObserveCommand("none", outcomeInvalid)
		return msgParseFailed
	}

	var (
		message string
		outcome string
	)
	switch in.Action {
	case intent.ActionSetReminder:
		message, outcome = b.setReminder(ctx, in, userID)
	case intent.ActionViewReminders:
		message, outcome = b.viewReminders(ctx, userID)
	case intent.ActionUpdateReminder:
		message, outcome = b.updateReminder(ctx, in)
	case intent.ActionDeleteReminder:
		message, outcome = b.deleteReminder(ctx, in)
	case intent.ActionSnoozeReminder:
		message, outcome = b.snoozeReminder(ctx, in)
	case intent.ActionViewHistory:
		message, outcome = b.viewHistory(ctx, userID)
	case intent.ActionHelp, intent.ActionHi, intent.ActionStart:
		message, outcome = helpResponse(), outcomeOK
	default:
		b.metrics.ObserveCommand("unknown", outcomeInvalid)
		return msgUnknownCommand
	}
	b.metrics.ObserveCommand(string(in.Action), outcome)
	return message
}

func (b *Bot) setReminder(ctx context.Context, in *intent.Intent, userID string) (string, string) {
	if err := in.Validate(); err != nil {
		b.logger.Printf("set reminder: %v", err)
		return msgCreateFailed, outcomeInvalid
	}

	reminder := &model.Reminder{
		Text:       in.Text,
		Date:       b.dates.Resolve(in.Date, in.Time),
		Recurrence: datetime.ParseRecurrence(in.Recurrence),
		Priority:   fallback(in.Priority, model.DefaultPriority),
		UserID:     userID,
	}
	if err := b.store.Create(ctx, reminder); err != nil {
		b.logger.Printf("set reminder: %v", err)
		return msgCreateFailed, outcomeError
	}
	return fmt.Sprintf("Reminder created: %s", b.describe(reminder)), outcomeOK
}

func (b *Bot) viewReminders(ctx context.Context, userID string) (string, string) {
	reminders, err := b.store.ListActive(ctx, userID)
	if err != nil {
		b.logger.Printf("view reminders: %v", err)
		return msgListFailed, outcomeError
	}
	if len(reminders) == 0 {
		return msgNoActive, outcomeOK
	}

	var sb strings.Builder
	sb.WriteString("Your reminders:")
	for _, r := range reminders {
		fmt.Fprintf(&sb, "\n%d: %s at %s", r.ID, r.Text, b.dates.Format(r.Date))
		if r.Recurrence != "" {
			fmt.Fprintf(&sb, " (%s)", r.Recurrence)
		}
		fmt.Fprintf(&sb, " [%s]", r.Priority)
	}
	return sb.String(), outcomeOK
}

func (b *Bot) updateReminder(ctx context.Context, in *intent.Intent) (string, string) {
	if err := in.Validate(); err != nil {
		b.logger.Printf("update reminder: %v", err)
		return msgUpdateFailed, outcomeInvalid
	}

	reminder, err := b.store.Update(ctx, uint(in.ID), b.patchFrom(in))
	if err != nil {
		b.logger.Printf("update reminder %d: %v", in.ID, err)
		return msgUpdateFailed, storeOutcome(err)
	}
	return fmt.Sprintf("Reminder updated: %s", b.describe(reminder)), outcomeOK
}

func (b *Bot) deleteReminder(ctx context.Context, in *intent.Intent) (string, string) {
	if err := in.Validate(); err != nil {
		b.logger.Printf("delete reminder: %v", err)
		return msgDeleteFailed, outcomeInvalid
	}
	if err := b.store.Delete(ctx, uint(in.ID)); err != nil {
		b.logger.Printf("delete reminder %d: %v", in.ID, err)
		return msgDeleteFailed, storeOutcome(err)
	}
	return "Reminder deleted.", outcomeOK
}

func (b *Bot) snoozeReminder(ctx context.Context, in *intent.Intent) (string, string) {
	if err := in.Validate(); err != nil {
		b.logger.Printf("snooze reminder: %v", err)
		return msgSnoozeFailed, outcomeInvalid
	}
	reminder, err := b.store.Snooze(ctx, uint(in.ID), int(in.SnoozeTime))
	if err != nil {
		b.logger.Printf("snooze reminder %d: %v", in.ID, err)
		return msgSnoozeFailed, storeOutcome(err)
	}
	return fmt.Sprintf("Reminder snoozed to: %s", b.dates.Format(reminder.Date)), outcomeOK
}

func (b *Bot) viewHistory(ctx context.Context, userID string) (string, string) {
	reminders, err := b.store.ListCompleted(ctx, userID)
	if err != nil {
		b.logger.Printf("view history: %v", err)
		return msgHistoryFailed, outcomeError
	}
	if len(reminders) == 0 {
		return msgNoCompleted, outcomeOK
	}

	var sb strings.Builder
	sb.WriteString("Your completed reminders:")
	for _, r := range reminders {
		fmt.Fprintf(&sb, "\n%d: %s completed at %s", r.ID, r.Text, b.dates.Format(r.Date))
	}
	return sb.String(), outcomeOK
}

// patchFrom keeps only what the user actually supplied. The date is rewritten
// when either half of it was given.
func (b *Bot) patchFrom(in *intent.Intent) model.ReminderPatch {
	var patch model.ReminderPatch
	if in.Text != "" {
		patch.Text = &in.Text
	}
	if in.Date != "" || in.Time != "" {
		date := b.dates.Resolve(in.Date, in.Time)
		patch.Date = &date
	}
	if in.Recurrence != "" {
		recurrence := datetime.ParseRecurrence(in.Recurrence)
		patch.Recurrence = &recurrence
	}
	if in.Priority != "" {
		patch.Priority = &in.Priority
	}
	return patch
}

func (b *Bot) describe(r *model.Reminder) string {
	return fmt.Sprintf("%s on %s with recurrence: %s and priority: %s",
		r.Text, b.dates.Format(r.Date), fallback(r.Recurrence, "none"), r.Priority)
}

func storeOutcome(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, store.ErrSnoozeRange):
		return outcomeInvalid
	}
	return outcomeError
}

func fallback(primary, secondary string) string {
	if strings.TrimSpace(primary) == "" {
		return secondary
	}
	return primary
}
