package intent

import (
	"errors"
	"testing"
)

func TestParseSetReminder(t *testing.T) {
	t.Parallel()

	in, err := Parse(`{"action":"set_reminder","text":"Buy milk","date":"2023-10-15","time":"10:00","recurrence":"daily","priority":"High"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Intent{Action: ActionSetReminder, Text: "Buy milk", Date: "2023-10-15", Time: "10:00", Recurrence: "daily", Priority: "high"}
	if *in != want {
		t.Fatalf("Parse = %+v, want %+v", *in, want)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseStripsCodeFences(t *testing.T) {
	t.Parallel()

	in, err := Parse("```json\n{\"action\": \"view_reminders\"}\n```")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Action != ActionViewReminders {
		t.Fatalf("Action = %q", in.Action)
	}
}

func TestParseAcceptsNumericStrings(t *testing.T) {
	t.Parallel()

	in, err := Parse(`{"action":"snooze_reminder","id":"7","snoozeTime":15}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.ID != 7 || in.SnoozeTime != 15 {
		t.Fatalf("ID=%d SnoozeTime=%d", in.ID, in.SnoozeTime)
	}

	in, err = Parse(`{"action":"delete_reminder","id":3.0}`)
	if err != nil {
		t.Fatalf("Parse float id: %v", err)
	}
	if in.ID != 3 {
		t.Fatalf("ID = %d, want 3", in.ID)
	}
}

func TestParseRepairsTrailingComma(t *testing.T) {
	t.Parallel()

	in, err := Parse(`{"action":"view_history",}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Action != ActionViewHistory {
		t.Fatalf("Action = %q", in.Action)
	}
}

func TestParseRejectsNonObjects(t *testing.T) {
	t.Parallel()

	if _, err := Parse("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Parse(blank) = %v, want ErrEmpty", err)
	}
	for _, content := range []string{`"set_reminder"`, `[1,2,3]`, `42`} {
		if in, err := Parse(content); err == nil {
			t.Fatalf("Parse(%q) = %+v, want error", content, in)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   Intent
		ok   bool
	}{
		{"set with text", Intent{Action: ActionSetReminder, Text: "x"}, true},
		{"set without text", Intent{Action: ActionSetReminder}, false},
		{"update with id", Intent{Action: ActionUpdateReminder, ID: 1}, true},
		{"update without id", Intent{Action: ActionUpdateReminder, Text: "x"}, false},
		{"delete without id", Intent{Action: ActionDeleteReminder}, false},
		{"snooze complete", Intent{Action: ActionSnoozeReminder, ID: 1, SnoozeTime: 10}, true},
		{"snooze without minutes", Intent{Action: ActionSnoozeReminder, ID: 1}, false},
		{"negative id", Intent{Action: ActionDeleteReminder, ID: -1}, false},
		{"view needs nothing", Intent{Action: ActionViewReminders}, true},
		{"help needs nothing", Intent{Action: ActionHelp}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.in.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: unexpected error %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("Validate: expected error")
			}
		})
	}
}

func TestValidateSnoozeBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minutes Number
		ok      bool
	}{
		{-5, true},
		{525600, true},
		{-525600, true},
		{525601, false},
		{-525601, false},
		{200000000, false},
	}
	for _, tc := range cases {
		in := Intent{Action: ActionSnoozeReminder, ID: 2, SnoozeTime: tc.minutes}
		err := in.Validate()
		if tc.ok && err != nil {
			t.Fatalf("snoozeTime %d: unexpected error %v", tc.minutes, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("snoozeTime %d: expected error", tc.minutes)
		}
	}
}

func TestParseToleratesWrongFieldTypes(t *testing.T) {
	t.Parallel()

	in, err := Parse(`{"action":"set_reminder","text":"x","time":10,"date":20231015,"priority":true,"recurrence":{"every":"day"}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Intent{Action: ActionSetReminder, Text: "x", Date: "20231015", Time: "10", Priority: "true"}
	if *in != want {
		t.Fatalf("Parse = %+v, want %+v", *in, want)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, content := range []string{
		`{"action":"delete_reminder","id":"abc"}`,
		`{"action":"delete_reminder","id":{"value":3}}`,
		`{"action":"delete_reminder","id":true}`,
		`{"action":"delete_reminder","id":1e40}`,
	} {
		in, err := Parse(content)
		if err != nil {
			t.Fatalf("Parse(%s): %v", content, err)
		}
		if in.Action != ActionDeleteReminder || in.ID != 0 {
			t.Fatalf("Parse(%s) = %+v, want delete with zero id", content, *in)
		}
		if err := in.Validate(); err == nil {
			t.Fatalf("Validate(%s): expected missing id error", content)
		}
	}

	in, err = Parse(`{"action":"snooze_reminder","id":4,"snoozeTime":"soon"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.SnoozeTime != 0 || in.Validate() == nil {
		t.Fatalf("non-numeric snoozeTime should decode to zero and fail validation: %+v", *in)
	}
}
