package model

import "encoding/json"

// Record is one logical row (a product, order or agent) keyed by field name.
type Record map[string]any

// Payload is the decoded form of an upstream `data` field.
type Payload interface {
	isPayload()
}

// Grid is tabular data: row 0 holds the field names, the remaining rows hold values.
type Grid [][]any

// RecordList is data that already arrived as one object per row.
type RecordList []Record

func (Grid) isPayload()       {}
func (RecordList) isPayload() {}

// Envelope is the response wrapper shared by the upstream sources and the proxy.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorEnvelope is returned for every failure answered by the proxy itself.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
