package domain

import "time"

// ============================================================
// Notification dispatch
// ============================================================

// NotificationRequest selects which customers receive their progress
// message. Limit caps the number of recipients (0 = all no-reward rows).
type NotificationRequest struct {
	Limit int `json:"limit"`
}

// NotificationOutcome is the captured result for one recipient. Dispatch
// is batched and synchronous, so every recipient gets exactly one outcome.
type NotificationOutcome struct {
	CustomerID string `json:"customer_id"`
	Mobile     string `json:"mobile"`
	Status     string `json:"status"` // sent, mocked, invalid_number, failed
	Error      string `json:"error,omitempty"`
}

// NotificationBatch is the full dispatch report.
type NotificationBatch struct {
	BatchID      string                `json:"batch_id"`
	DatasetID    string                `json:"dataset_id"`
	Outcomes     []NotificationOutcome `json:"outcomes"`
	Sent         int                   `json:"sent"`
	Failed       int                   `json:"failed"`
	DispatchedAt time.Time             `json:"dispatched_at"`
}

// Notification outcome statuses.
const (
	NotifySent          = "sent"
	NotifyMocked        = "mocked"
	NotifyInvalidNumber = "invalid_number"
	NotifyFailed        = "failed"
)
