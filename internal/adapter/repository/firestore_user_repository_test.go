package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"petadopt/internal/domain/entity"
)

func TestStampProfileUsesDocumentID(t *testing.T) {
	legacy := stampProfile(&entity.Profile{ID: "stale-id", Email: "me@x.io"}, "doc-1")
	assert.Equal(t, "doc-1", legacy.ID)
	assert.Equal(t, entity.ProfileSourceRemote, legacy.Source)

	fresh := stampProfile(&entity.Profile{Email: "me@x.io"}, "doc-2")
	assert.Equal(t, "doc-2", fresh.ID)
}
