package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), func(context.Context) string { return token }, zap.NewNop())
}

func TestClientAttachesBearerWhenPresent(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "tok-123")

	require.NoError(t, c.Get(context.Background(), "/Stations/1", nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClientOmitsBearerWhenAbsent(t *testing.T) {
	var gotAuth string
	hasHeader := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}, "")

	require.NoError(t, c.Get(context.Background(), "/Stations", nil))
	assert.Empty(t, gotAuth)
	assert.False(t, hasHeader)
}

func TestClientNoContentSkipsBodyParse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	var out map[string]any
	err := c.Delete(context.Background(), "/Bookings/9", &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestClientErrorStatusesAlwaysCarryMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message", http.StatusConflict, `{"message":"port already busy"}`, "port already busy"},
		{"json title", http.StatusBadRequest, `{"title":"One or more validation errors occurred."}`, "One or more validation errors occurred."},
		{"errors map", http.StatusBadRequest, `{"errors":{"PortId":["must be positive"]}}`, "PortId: must be positive"},
		{"raw text", http.StatusBadGateway, "upstream unavailable", "upstream unavailable"},
		{"empty body", http.StatusInternalServerError, "", "GET /Ports/1 failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, "")

			err := c.Get(context.Background(), "/Ports/1", nil)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestCleanMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain conflict passes through",
			in:   "port already busy",
			want: "port already busy",
		},
		{
			name: "stack frames stripped",
			in:   "Session already active\n   at ChargingService.Start()\n   at Controller.Post()",
			want: "Session already active",
		},
		{
			name: "file line references stripped",
			in:   "Port is locked\nChargingService.cs:142\nmore detail",
			want: "Port is locked more detail",
		},
		{
			name: "truncated to first sentence",
			in:   "Port is in maintenance. Contact the station operator for the full maintenance window schedule.",
			want: "Port is in maintenance.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMessage(tt.in))
		})
	}
}

func TestCleanMessageBoundsLength(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "very long fragment "
	}
	out := CleanMessage(long)
	assert.LessOrEqual(t, len([]rune(out)), 200)
	assert.NotEmpty(t, out)
}
