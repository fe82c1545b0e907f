package firebase

import (
	"context"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petadopt/internal/domain/service"
)

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "user_jane.doe_example.com", TopicFor("jane.doe@example.com"))
	assert.Equal(t, "user_a_b", TopicFor("a b"))
}

func TestNoopNotifier(t *testing.T) {
	n := NewNoopNotifier()
	assert.NoError(t, n.Notify(context.Background(), service.PushNotification{RecipientID: "x"}))
}

func TestSessionUserFromRecord(t *testing.T) {
	record := &auth.UserRecord{
		UserInfo: &auth.UserInfo{UID: "u1", Email: "me@x.io", DisplayName: "Me"},
		ProviderUserInfo: []*auth.UserInfo{
			{ProviderID: "google.com", UID: "g-1", Email: "me@gmail.com"},
		},
	}

	user := sessionUserFromRecord(record)
	require.Len(t, user.ProviderData, 1)
	assert.Equal(t, "u1", user.UID)
	assert.Equal(t, "me@gmail.com", user.LookupEmail())

	record.ProviderUserInfo = nil
	user = sessionUserFromRecord(record)
	assert.Equal(t, "me@x.io", user.LookupEmail())
}
