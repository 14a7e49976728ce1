package domain

import "time"

// OperationStatus is the bridge-side lifecycle of a request.
type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationSucceeded OperationStatus = "succeeded"
	OperationFailed    OperationStatus = "failed"
)

// OperationRecord is what the bridge keeps about one share or oauth request.
type OperationRecord struct {
	ID         string            `json:"id"`
	Platform   Platform          `json:"platform"`
	Kind       OperationKind     `json:"kind"`
	Endpoint   Endpoint          `json:"endpoint,omitempty"`
	Status     OperationStatus   `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// LaunchRecord is a launch link the host asked the OS to open.
type LaunchRecord struct {
	URL               string    `json:"url"`
	UniversalLinkOnly bool      `json:"universal_link_only"`
	DispatchedAt      time.Time `json:"dispatched_at"`
}

// ShareRequest is a share as submitted to the bridge.
type ShareRequest struct {
	Endpoint Endpoint
	Message  Message
}
