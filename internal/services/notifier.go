package services

import "log"

// Notifier surfaces user-facing messages. Network failures are converted to
// notifications at the call site and never propagate as panics; the process
// must keep running after a failed API call.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// Success logs an informational notification.
func (LogNotifier) Success(message string) {
	log.Printf("[notify] %s", message)
}

// Error logs an error notification.
func (LogNotifier) Error(message string) {
	log.Printf("[notify] ERROR: %s", message)
}
