package errors

import (
	"net/http"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsSeesThroughWrapping(t *testing.T) {
	err := pkgerrors.Wrap(NotFound("Watchlist", nil), "load watchlist")

	assert.True(t, IsNotFound(err))
	assert.False(t, Is(err, "FORBIDDEN"))
	assert.False(t, IsNotFound(pkgerrors.New("plain")))
}

func TestTooManyRequests(t *testing.T) {
	err := TooManyRequests("too many messages", 4600*time.Millisecond)

	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Contains(t, err.Message, "retry in 5s")
}

func TestUnwrap(t *testing.T) {
	cause := pkgerrors.New("rpc failed")
	err := Internal("Failed to load profile", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: Failed to load profile", err.Error())
}
