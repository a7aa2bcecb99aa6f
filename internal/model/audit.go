package model

import "time"

type AuditEntry struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Resource  Resource  `json:"resource"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
