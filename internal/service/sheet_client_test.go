package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sheetproxy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.UnixMilli(1700000000000) }

func TestSheetClient_BuildURL(t *testing.T) {
	tests := []struct {
		name     string
		resource model.Resource
		base     string
		opts     []SheetClientOption
		extra    url.Values
		expected url.Values
	}{
		{
			name:     "timestamp only",
			resource: model.ResourceProducts,
			base:     "https://script.example.com/exec",
			expected: url.Values{"t": {"1700000000000"}},
		},
		{
			name:     "keeps base query",
			resource: model.ResourceOrders,
			base:     "https://script.example.com/exec?sheet=Orders",
			extra:    url.Values{"id": {"ORD-1"}},
			expected: url.Values{"sheet": {"Orders"}, "id": {"ORD-1"}, "t": {"1700000000000"}},
		},
		{
			name:     "legacy callback",
			resource: model.ResourceAgents,
			base:     "https://script.example.com/exec",
			opts:     []SheetClientOption{WithCallbackName("tempCallback")},
			expected: url.Values{"format": {"jsonp"}, "callback": {"tempCallback"}, "t": {"1700000000000"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]SheetClientOption{WithClock(fixedClock)}, tc.opts...)
			c := NewSheetClient(tc.resource, tc.base, opts...)

			got, err := c.BuildURL(tc.extra)
			require.NoError(t, err)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u.Query())
		})
	}
}

func TestSheetClient_ReadAll(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expected     string
		errAssertion assert.ErrorAssertionFunc
	}{
		{
			name:         "grid envelope",
			status:       http.StatusOK,
			body:         `{"success":true,"data":[["Code","Name"],["A1","Widget"]]}`,
			expected:     `{"success":true,"data":[{"Code":"A1","Name":"Widget"}]}`,
			errAssertion: assert.NoError,
		},
		{
			name:         "legacy wrapped",
			status:       http.StatusOK,
			body:         `tempCallback({"success":true,"data":[["Code"],["A1"]]})`,
			expected:     `{"success":true,"data":[{"Code":"A1"}]}`,
			errAssertion: assert.NoError,
		},
		{
			name:   "unparseable",
			status: http.StatusOK,
			body:   `<html>Sign in</html>`,
			errAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, ErrUnparseable)
			},
		},
		{
			name:   "error status",
			status: http.StatusBadGateway,
			body:   `{"success":true}`,
			errAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, ErrUpstreamStatus)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.NotEmpty(t, r.URL.Query().Get("t"))
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			c := NewSheetClient(model.ResourceProducts, srv.URL, WithHTTPClient(srv.Client()))
			got, err := c.ReadAll(context.Background())
			tc.errAssertion(t, err)
			if err != nil {
				return
			}
			assert.JSONEq(t, tc.expected, string(got))
		})
	}
}

func TestSheetClient_ReadByID(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		io.WriteString(w, `{"success":true,"data":{"Code":"A1","Name":"Widget"}}`)
	}))
	defer srv.Close()

	c := NewSheetClient(model.ResourceProducts, srv.URL, WithHTTPClient(srv.Client()))
	got, err := c.ReadByID(context.Background(), "A1")
	require.NoError(t, err)

	assert.Equal(t, "A1", query.Get("code"))
	assert.JSONEq(t, `{"success":true,"data":{"Code":"A1","Name":"Widget"}}`, string(got))

	orders := NewSheetClient(model.ResourceOrders, srv.URL, WithHTTPClient(srv.Client()))
	_, err = orders.ReadByID(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", query.Get("id"))
}

func TestSheetClient_Write(t *testing.T) {
	tests := []struct {
		name        string
		respBody    string
		contentType string
		expected    string
		isJSON      bool
	}{
		{"plain json", `{"success":true, "row":4}`, "application/json", `{"success":true, "row":4}`, true},
		{"wrapped json", `cb({"success":true})`, "text/javascript", `{"success":true}`, true},
		{"raw text", `Saved`, "text/plain", `Saved`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotBody []byte
			var gotContentType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				gotContentType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				w.Header().Set("Content-Type", tc.contentType)
				io.WriteString(w, tc.respBody)
			}))
			defer srv.Close()

			c := NewSheetClient(model.ResourceOrders, srv.URL, WithHTTPClient(srv.Client()))
			res, err := c.Write(context.Background(), []byte(`{"action":"add","id":"ORD-1"}`))
			require.NoError(t, err)

			assert.Equal(t, "application/json", gotContentType)
			assert.Equal(t, `{"action":"add","id":"ORD-1"}`, string(gotBody))
			assert.Equal(t, tc.expected, string(res.Body))
			assert.Equal(t, tc.isJSON, res.IsJSON)
			assert.Equal(t, tc.contentType, res.ContentType)
		})
	}
}

func TestSheetClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	c := NewSheetClient(model.ResourceAgents, target)
	_, err := c.ReadAll(context.Background())
	assert.Error(t, err)

	_, err = c.Write(context.Background(), []byte(`{"action":"add"}`))
	assert.Error(t, err)
}
