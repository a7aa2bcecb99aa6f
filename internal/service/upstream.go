package service

import (
	"context"
	"encoding/json"

	"sheetproxy/internal/model"
)

// UpstreamClient talks to one spreadsheet-backed data source. Reads return the
// normalized envelope as JSON text.
type UpstreamClient interface {
	Resource() model.Resource
	ReadAll(ctx context.Context) (json.RawMessage, error)
	ReadByID(ctx context.Context, id string) (json.RawMessage, error)
	Write(ctx context.Context, body []byte) (*WriteResult, error)
}

// WriteResult is an upstream write response, relayed without reshaping.
type WriteResult struct {
	Body        []byte
	ContentType string
	IsJSON      bool
}
