package request

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2030, 6, 26, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: `"2030-06-26T00:00Z"`},
		{in: `"2030-06-26T00:00:00Z"`},
		{in: `"2030-06-26T02:00:00+02:00"`},
		{in: `"2030-06-26T00:00:00"`},
		{in: `"2030-06-26T00:00"`},
		{in: `"26/06/2030"`, wantErr: true},
		{in: `12`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestCreateEventRequest_Defaults(t *testing.T) {
	body := `{
		"title": "My Cool Event",
		"description": "This is a cool event",
		"location": "Virtual",
		"start_time": "2030-06-26T00:00Z",
		"end_time": "2030-06-26T02:00Z",
		"max_seats": 100,
		"ticket_cost": "20.00",
		"booking_start": "2030-06-20T00:00Z",
		"booking_end": "2030-06-25T00:00Z"
	}`
	var req CreateEventRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, req.Validate())

	e := req.ToDomain()
	assert.Equal(t, domain.EventOnline, e.EventType)
	assert.Equal(t, 1, e.MaxTicketsPerUser)
	assert.Equal(t, domain.Money(2000), e.TicketCost)
	assert.NoError(t, e.Validate())
}

func TestCreateEventRequest_MissingFields(t *testing.T) {
	var req CreateEventRequest
	err := req.Validate()
	require.Error(t, err)

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	for _, field := range []string{"title", "description", "location", "start_time", "end_time", "max_seats", "ticket_cost", "booking_start", "booking_end"} {
		assert.Contains(t, errs, field)
	}
}

func TestUpdateEventRequest_ToPatch(t *testing.T) {
	var req UpdateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","end_time":"2030-06-26T03:00Z"}`), &req))

	patch := req.ToPatch()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "New", *patch.Title)
	require.NotNil(t, patch.EndTime)
	assert.Equal(t, 3, patch.EndTime.Hour())
	assert.Nil(t, patch.StartTime)
	assert.Nil(t, patch.MaxSeats)
}

func TestCreateTicketRequest(t *testing.T) {
	var req CreateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"event":3}`), &req))
	require.NoError(t, req.Validate())
	assert.Equal(t, 1, req.QuantityOrDefault())

	require.NoError(t, json.Unmarshal([]byte(`{"event":3,"quantity":0}`), &req))
	assert.Error(t, req.Validate())

	req = CreateTicketRequest{}
	assert.Error(t, req.Validate())
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{name: "ok", username: "alice", password: "mypassword"},
		{name: "email-like username", username: "a.b+c@d-e_f", password: "mypassword"},
		{name: "bad username", username: "al ice", password: "mypassword", field: "username"},
		{name: "long username", username: strings.Repeat("a", 151), password: "mypassword", field: "username"},
		{name: "short password", username: "alice", password: "abc", field: "password"},
		{name: "digits only", username: "alice", password: "12345678", field: "password"},
		{name: "whitespace", username: "alice", password: "my password", field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RegisterRequest{Username: tt.username, Password: tt.password}
			err := req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}
