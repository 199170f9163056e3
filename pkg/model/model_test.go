package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationResize(t *testing.T) {
	tests := []struct {
		name      string
		in        Pagination
		delta     int
		wantItems int
		wantPages int
	}{
		{"grow within page", Pagination{Page: 1, Limit: 10, TotalItems: 5, TotalPages: 1}, 1, 6, 1},
		{"grow onto new page", Pagination{Page: 1, Limit: 10, TotalItems: 10, TotalPages: 1}, 1, 11, 2},
		{"shrink off a page", Pagination{Page: 2, Limit: 10, TotalItems: 11, TotalPages: 2}, -1, 10, 1},
		{"never negative", Pagination{Limit: 10}, -1, 0, 1},
		{"no limit keeps pages", Pagination{TotalItems: 3, TotalPages: 4}, 1, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Resize(tt.delta)
			assert.Equal(t, tt.wantItems, got.TotalItems)
			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.Equal(t, tt.in.Page, got.Page)
		})
	}
}

func TestCountersAddOnlyTouchesKnownKeys(t *testing.T) {
	base := Counters{"totalPlayers": 2, "totalCost": 10}

	got := base.Add(Counters{"totalPlayers": 1, "totalCost": 5, "totalCaptains": 1})

	assert.Equal(t, Counters{"totalPlayers": 3, "totalCost": 15}, got)
	assert.Equal(t, int64(2), base["totalPlayers"], "receiver must not be mutated")

	assert.Nil(t, Counters(nil).Add(Counters{"totalPlayers": 1}))
	assert.Equal(t, Counters{"totalPlayers": 1, "totalCost": 5}, base.Sub(Counters{"totalPlayers": 1, "totalCost": 5}))
}

func TestProfilePatchApplyTo(t *testing.T) {
	name := "X"
	yob := 1990
	u := User{ID: "u1", Username: "neo", Name: "Old", YOB: 1980}

	got := ProfilePatch{Name: &name, YOB: &yob}.ApplyTo(u)
	assert.Equal(t, "X", got.Name)
	assert.Equal(t, 1990, got.YOB)
	assert.Equal(t, "neo", got.Username)

	assert.Equal(t, u, ProfilePatch{}.ApplyTo(u))
	assert.True(t, ProfilePatch{}.Empty())
}

func TestValidate(t *testing.T) {
	blank := " "
	badYOB := 1700

	tests := []struct {
		name  string
		v     interface{ Validate() error }
		field string
	}{
		{"credentials ok", Credentials{Username: "a", Password: "b"}, ""},
		{"credentials no user", Credentials{Password: "b"}, "username"},
		{"registration short password", Registration{Username: "a", Password: "123", Name: "A", YOB: 1990}, "password"},
		{"registration bad yob", Registration{Username: "a", Password: "123456", Name: "A", YOB: 1800}, "YOB"},
		{"registration ok", Registration{Username: "a", Password: "123456", Name: "A", YOB: 1990}, ""},
		{"patch blank name", ProfilePatch{Name: &blank}, "name"},
		{"patch bad yob", ProfilePatch{YOB: &badYOB}, "YOB"},
		{"player negative cost", PlayerDraft{Name: "P", Cost: -1, TeamID: "t"}, "cost"},
		{"player no team", PlayerDraft{Name: "P"}, "team"},
		{"team blank", TeamDraft{}, "teamName"},
		{"comment rating", CommentDraft{Rating: 4, Content: "x"}, "rating"},
		{"comment ok", CommentDraft{Rating: 3, Content: "great"}, ""},
		{"password no current", PasswordChange{NewPassword: "secret1"}, "currentPassword"},
		{"password too short", PasswordChange{CurrentPassword: "x", NewPassword: "abc"}, "newPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}
