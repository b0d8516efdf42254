package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"
)

// Action tags a structured command.
type Action string

const (
	ActionSetReminder    Action = "set_reminder"
	ActionViewReminders  Action = "view_reminders"
	ActionUpdateReminder Action = "update_reminder"
	ActionDeleteReminder Action = "delete_reminder"
	ActionSnoozeReminder Action = "snooze_reminder"
	ActionViewHistory    Action = "view_history"
	ActionHelp           Action = "help"
	ActionHi             Action = "hi"
	ActionStart          Action = "start"
)

// ErrEmpty is returned when there is no content to decode.
var ErrEmpty = errors.New("intent: empty content")

// Intent is the structured form of one user command. Which fields matter
// depends on Action.
type Intent struct {
	Action     Action `json:"action"`
	ID         Number `json:"id" validate:"required_if=Action update_reminder,required_if=Action delete_reminder,required_if=Action snooze_reminder,gte=0"`
	Text       string `json:"text" validate:"required_if=Action set_reminder"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Recurrence string `json:"recurrence"`
	Priority   string `json:"priority"`
	SnoozeTime Number `json:"snoozeTime" validate:"required_if=Action snooze_reminder,min=-525600,max=525600"`
}

// wireIntent is the tolerant decoding target. A field of the wrong JSON type
// degrades to its zero value instead of failing the whole object.
type wireIntent struct {
	Action     lenientString `json:"action"`
	ID         Number        `json:"id"`
	Text       lenientString `json:"text"`
	Date       lenientString `json:"date"`
	Time       lenientString `json:"time"`
	Recurrence lenientString `json:"recurrence"`
	Priority   lenientString `json:"priority"`
	SnoozeTime Number        `json:"snoozeTime"`
}

var validate = validator.New()

// Validate checks the fields the action needs before anything touches storage.
func (i *Intent) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("intent %s: %w", i.Action, err)
	}
	return nil
}

// Parse decodes model output into an Intent. Markdown code fences are
// stripped, and malformed JSON gets one repair attempt before giving up.
func Parse(content string) (*Intent, error) {
	raw := stripFences(content)
	if raw == "" {
		return nil, ErrEmpty
	}

	in, err := decode(raw)
	if err == nil {
		return in, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, fmt.Errorf("intent: decode: %w", err)
	}
	in, err = decode(repaired)
	if err != nil {
		return nil, fmt.Errorf("intent: decode repaired json: %w", err)
	}
	return in, nil
}

func decode(raw string) (*Intent, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("intent: expected a JSON object")
	}
	var w wireIntent
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return nil, err
	}
	return &Intent{
		Action:     Action(strings.ToLower(strings.TrimSpace(string(w.Action)))),
		ID:         w.ID,
		Text:       strings.TrimSpace(string(w.Text)),
		Date:       strings.TrimSpace(string(w.Date)),
		Time:       strings.TrimSpace(string(w.Time)),
		Recurrence: string(w.Recurrence),
		Priority:   strings.ToLower(strings.TrimSpace(string(w.Priority))),
		SnoozeTime: w.SnoozeTime,
	}, nil
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// lenientString keeps JSON strings as is and the literal text of numbers and
// booleans. Null, objects and arrays become empty.
type lenientString string

// UnmarshalJSON implements json.Unmarshaler.
func (l *lenientString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = lenientString(s)
	case '{', '[', 'n':
	default:
		*l = lenientString(data)
	}
	return nil
}

// Number accepts a JSON number or a numeric string. Anything else, including
// null and non-numeric strings, decodes to zero.
type Number int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = 0
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	case '{', '[', 'n', 't', 'f':
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Number(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	*n = Number(f)
	return nil
}
