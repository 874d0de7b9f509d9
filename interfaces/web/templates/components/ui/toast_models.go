package ui

import "time"

// ToastNotificationView represents the view model for a toast notification with run details.
type ToastNotificationView struct {
	Title     string
	Message   string
	Type      string
	Duration  string
	Stats     *ToastStatsView
	Timestamp time.Time
}

// ToastStatsView represents run counters for the toast.
type ToastStatsView struct {
	Total     int
	Succeeded int
	Failed    int
}
