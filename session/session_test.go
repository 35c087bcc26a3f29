package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := New("secret")

	token, err := m.Issue("user-1")
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := New("secret-a").Issue("user-1")
	require.NoError(t, err)

	_, err = New("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := New("secret").Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = New("secret").Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := New("secret")

	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }
	token, err := m.Issue("user-1")
	require.NoError(t, err)

	// a day short of the 30-day lifetime still verifies
	m.now = func() time.Time { return issuedAt.Add(29 * 24 * time.Hour) }
	_, err = m.Verify(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(31 * 24 * time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword("", "hunter22"))
}
