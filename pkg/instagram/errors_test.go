package instagram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsType(t *testing.T) {
	err := &Error{Type: ErrorTypeNotFound, Message: "Profile not found", Code: 404}

	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(err, ErrorTypeRateLimited))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeNotFound))
	assert.False(t, IsType(nil, ErrorTypeNotFound))
}

func TestClassifyMessage(t *testing.T) {
	t.Run("rate limit phrase", func(t *testing.T) {
		e := classifyMessage("Oops. Please wait a few minutes before you try again.", 400)
		require.NotNil(t, e)
		assert.Equal(t, ErrorTypeRateLimited, e.Type)
		assert.Equal(t, 400, e.Code)
	})

	t.Run("login required text", func(t *testing.T) {
		e := classifyMessage(`{"message": "login_required", "status": "fail"}`, 403)
		require.NotNil(t, e)
		assert.Equal(t, ErrorTypeLoginRequired, e.Type)
	})

	t.Run("login required case insensitive", func(t *testing.T) {
		e := classifyMessage("LOGIN_REQUIRED", 403)
		require.NotNil(t, e)
		assert.Equal(t, ErrorTypeLoginRequired, e.Type)
	})

	t.Run("rate phrase wins over login text", func(t *testing.T) {
		e := classifyMessage("login_required: Please wait a few minutes before you try again", 429)
		require.NotNil(t, e)
		assert.Equal(t, ErrorTypeRateLimited, e.Type)
	})

	t.Run("unmatched text", func(t *testing.T) {
		assert.Nil(t, classifyMessage("something unrelated", 400))
	})
}

func TestClassify(t *testing.T) {
	t.Run("typed error passes through", func(t *testing.T) {
		orig := &Error{Type: ErrorTypePrivate, Message: "private"}
		assert.Equal(t, orig, classify(orig))
	})

	t.Run("rate limit text in plain error", func(t *testing.T) {
		e := classify(errors.New("Please wait a few minutes before you try again"))
		assert.Equal(t, ErrorTypeRateLimited, e.Type)
	})

	t.Run("plain error becomes connection", func(t *testing.T) {
		e := classify(errors.New("dial tcp: connection refused"))
		assert.Equal(t, ErrorTypeConnection, e.Type)
		assert.Contains(t, e.Message, "connection refused")
	})
}
