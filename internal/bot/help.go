package bot

func helpResponse() string {
	return `Welcome to the Reminder Bot! Here's how you can manage your reminders:

1. Set Reminder
   set reminder <text>, <date>, <time>, <recurrence>, <priority>
   e.g. set reminder Buy groceries, 2023-10-15, 10:00, daily, high
   Missing date means tomorrow; missing time means 09:00.

2. View Reminders
   view reminders
   Lists your active reminders.

3. Update Reminder
   update reminder <id> <text>, <date>, <time>, <recurrence>, <priority>
   e.g. update reminder 1 Buy groceries, 2023-10-16, 11:00, weekly, medium

4. Delete Reminder
   delete reminder <id>
   e.g. delete reminder 1

5. Snooze Reminder
   snooze reminder <id> <minutes>
   e.g. snooze reminder 1 10

6. View History
   view history
   Lists your completed reminders.

7. start / help / hi
   Shows this message.`
}
