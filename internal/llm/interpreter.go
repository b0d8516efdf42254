package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pathakanu/reminderbot/internal/intent"
	myopenai "github.com/pathakanu/reminderbot/internal/openai"
)

// SystemPrompt instructs the model to answer with a single intent object.
const SystemPrompt = `You convert messages sent to a reminder bot into JSON.
Reply with exactly one JSON object and nothing else.
The "action" field is one of: set_reminder, view_reminders, update_reminder,
delete_reminder, snooze_reminder, view_history, help, hi, start.
Fields per action:
- set_reminder: text (required), date (YYYY-MM-DD), time (HH:MM, 24h), recurrence, priority (low|medium|high)
- update_reminder: id (required, number), text, date, time, recurrence, priority
- delete_reminder: id (required, number)
- snooze_reminder: id (required, number), snoozeTime (required, minutes as a number)
- view_reminders, view_history, help, hi, start: no other fields
Omit fields the user did not give. Never invent dates or times.
Example: "set reminder Buy milk, 2023-10-15, 10:00, daily, high" ->
{"action":"set_reminder","text":"Buy milk","date":"2023-10-15","time":"10:00","recurrence":"daily","priority":"high"}`

// Interpreter maps free text to an Intent through a completion backend.
type Interpreter struct {
	completer Completer
	timeout   time.Duration
	logger    *log.Logger
}

// NewInterpreter returns an Interpreter. A zero timeout leaves the call bounded
// only by ctx.
func NewInterpreter(completer Completer, timeout time.Duration, logger *log.Logger) *Interpreter {
	return &Interpreter{completer: completer, timeout: timeout, logger: logger}
}

// Interpret makes one completion call and decodes the reply. Any failure
// (transport, empty reply, malformed JSON) yields nil.
func (i *Interpreter) Interpret(ctx context.Context, text string) *intent.Intent {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	content, err := i.completer.Complete(ctx, SystemPrompt, text)
	if err != nil {
		if !errors.Is(err, myopenai.ErrClientNotInitialised) {
			i.logger.Printf("interpreter: completion: %v", err)
		}
		return nil
	}

	in, err := intent.Parse(content)
	if err != nil {
		i.logger.Printf("interpreter: decode reply %q: %v", content, err)
		return nil
	}
	return in
}
