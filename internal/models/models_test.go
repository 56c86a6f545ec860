package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteTokenIsValid(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Minute).UnixMilli()

	tests := []struct {
		name        string
		token       InviteToken
		wantExpired bool
		wantValid   bool
	}{
		{
			name:      "future expiration",
			token:     InviteToken{ExpiresAt: now.Add(time.Hour).UnixMilli()},
			wantValid: true,
		},
		{
			name:        "just expired",
			token:       InviteToken{ExpiresAt: now.UnixMilli()},
			wantExpired: true,
		},
		{
			name:      "no expiry recorded",
			token:     InviteToken{},
			wantValid: true,
		},
		{
			name:  "already used",
			token: InviteToken{ExpiresAt: now.Add(time.Hour).UnixMilli(), UsedAt: &used},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExpired, tt.token.IsExpired(now))
			assert.Equal(t, tt.wantValid, tt.token.IsValid(now))
		})
	}
}

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in      string
		want    EventType
		wantErr bool
	}{
		{in: "", want: EventPotty},
		{in: "potty", want: EventPotty},
		{in: " Breakfast ", want: EventBreakfast},
		{in: "NAP", want: EventNap},
		{in: "bath", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEventType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventTypeLabels(t *testing.T) {
	assert.Equal(t, "Number 2", EventType("").Label())
	assert.Equal(t, "💩", EventType("").Icon())
	assert.Equal(t, "Good Morning", EventWakeup.Label())
	assert.Equal(t, "🍝", EventDinner.Icon())
	assert.Len(t, EventTypes, len(eventTypes))
	for _, et := range EventTypes {
		assert.NotEmpty(t, et.Label(), et)
	}
}

func TestLegacyEventReadsAsPotty(t *testing.T) {
	var ev PottyEvent
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","childId":"c1","timestamp":1700000000000}`), &ev))
	assert.Equal(t, EventPotty, ev.Kind())
	assert.Equal(t, EventType(""), ev.Type)
}

func TestUserHelpers(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
	assert.Equal(t, "Ada Lovelace", DisplayName(" Ada", "Lovelace "))
	assert.Equal(t, "Ada", DisplayName("Ada", ""))

	u := User{Email: "a@x.com", Password: "secret"}
	assert.Empty(t, u.WithoutPassword().Password)
	assert.Equal(t, "secret", u.Password)
}

func TestFrequencyBucketDense(t *testing.T) {
	assert.False(t, FrequencyBucket{Count: 2}.Dense())
	assert.True(t, FrequencyBucket{Count: 3}.Dense())
}
