package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sheetproxy/helper"
	"sheetproxy/internal/model"
)

var (
	ErrMixedPayload = errors.New("payload rows are not all of the same kind")
	ErrUnparseable  = errors.New("response is neither JSON nor a wrapped legacy payload")
)

// DecodePayload classifies an upstream `data` value as a Grid or a RecordList.
// Anything that is not a non-empty array decodes to an empty RecordList.
func DecodePayload(raw json.RawMessage) (model.Payload, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return model.RecordList{}, nil
	}

	switch firstByte(rows[0]) {
	case '{':
		list := make(model.RecordList, 0, len(rows))
		for i, row := range rows {
			var rec model.Record
			if firstByte(row) != '{' || json.Unmarshal(row, &rec) != nil {
				return nil, fmt.Errorf("%w: row %d is not an object", ErrMixedPayload, i)
			}
			list = append(list, rec)
		}
		return list, nil
	case '[':
		grid := make(model.Grid, 0, len(rows))
		for i, row := range rows {
			var cells []any
			if firstByte(row) != '[' || json.Unmarshal(row, &cells) != nil {
				return nil, fmt.Errorf("%w: row %d is not an array", ErrMixedPayload, i)
			}
			grid = append(grid, cells)
		}
		return grid, nil
	default:
		// scalars are not records
		return model.RecordList{}, nil
	}
}

// Normalize turns any payload into a list of records. A RecordList is returned
// unchanged, so Normalize is idempotent.
func Normalize(p model.Payload) []model.Record {
	switch v := p.(type) {
	case model.RecordList:
		if v == nil {
			return []model.Record{}
		}
		return v
	case model.Grid:
		return gridToRecords(v)
	default:
		return []model.Record{}
	}
}

func gridToRecords(g model.Grid) []model.Record {
	records := []model.Record{}
	if len(g) == 0 {
		return records
	}

	headers := make([]string, len(g[0]))
	for i, h := range g[0] {
		headers[i] = strings.TrimSpace(cellString(h))
	}

	for _, row := range g[1:] {
		rec := make(model.Record, len(headers))
		for i, h := range headers {
			if i < len(row) && row[i] != nil {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// ExtractLegacyPayload parses either a `name(<json>)` body or plain JSON.
// The boolean is false when neither form parses.
func ExtractLegacyPayload(text string) (any, bool) {
	raw, ok := ExtractJSONText([]byte(text))
	if !ok {
		return nil, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// ExtractJSONText returns the JSON text of a body without decoding it.
func ExtractJSONText(text []byte) ([]byte, bool) {
	if inner, ok := helper.UnwrapLegacy(string(text)); ok && json.Valid([]byte(inner)) {
		return []byte(inner), true
	}
	if json.Valid(text) {
		return text, true
	}
	return nil, false
}

// NormalizeEnvelope reshapes the data of a read response. Only an array under
// `data` is rewritten; every other key of the upstream object is kept. A
// top-level array, or an object with neither `success` nor `data` (a bare
// record), is wrapped as a successful envelope.
func NormalizeEnvelope(raw json.RawMessage) (json.RawMessage, error) {
	switch firstByte(raw) {
	case '[':
		data, err := normalizeData(raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(model.Envelope{Success: true, Data: data})
	case '{':
	default:
		return nil, fmt.Errorf("%w: unexpected top-level value", ErrUnparseable)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	_, hasSuccess := fields["success"]
	data, hasData := fields["data"]
	if !hasSuccess && !hasData {
		return json.Marshal(model.Envelope{Success: true, Data: raw})
	}

	if !hasData || firstByte(data) != '[' {
		return raw, nil
	}

	normalized, err := normalizeData(data)
	if err != nil {
		return nil, err
	}
	fields["data"] = normalized
	return json.Marshal(fields)
}

func normalizeData(raw json.RawMessage) (json.RawMessage, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(Normalize(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
