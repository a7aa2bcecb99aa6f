package model

// WriteRequest is the part of a write body the proxy reads; the whole body is
// forwarded. The upstream script dispatches on Action (add, update, delete).
type WriteRequest struct {
	Action string `json:"action"`
}
