package ports

import "github.com/freelancehub/tracker/internal/core/domain"

// ReminderNotifier shows a deadline reminder to the user. It is always called
// from the UI dispatcher's goroutine.
type ReminderNotifier interface {
	OnReminder(r domain.Reminder)
}

// UIDispatcher runs callbacks on the goroutine that owns user-facing state.
type UIDispatcher interface {
	RunOnUI(fn func()) error
}
