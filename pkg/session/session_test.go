package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIsAuthenticated(t *testing.T) {
	s := New("some-token", User{ID: 1, Username: "09121112233", Role: "user"})

	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, uint(1), s.User().ID)
	assert.Equal(t, "09121112233", s.User().Username)
}

func TestSessionExpiresAfterSevenDays(t *testing.T) {
	s := New("some-token", User{ID: 1, Username: "09121112233"})

	// Just inside the window
	s.LoginAt = time.Now().Add(-MaxAge + time.Minute)
	assert.True(t, s.IsAuthenticated())

	// Past the window: stale even though the token string is still present
	s.LoginAt = time.Now().Add(-MaxAge - time.Minute)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.NotEmpty(t, s.Token, "staleness is time-based, the token is untouched")
}

func TestSessionWithoutToken(t *testing.T) {
	s := New("", User{ID: 1})
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestLogout(t *testing.T) {
	s := New("some-token", User{ID: 1, Username: "09121112233"})
	require.True(t, s.IsAuthenticated())

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token)
}

func TestNilSession(t *testing.T) {
	var s *Session
	assert.False(t, s.IsAuthenticated())
}
