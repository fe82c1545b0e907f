package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"petadopt/internal/domain/entity"
)

func TestMemoryCacheScopes(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider("petadopt")

	alice := provider.Scope("alice")
	bob := provider.Scope("bob")

	alice.Set(ctx, entity.SessionUserKey, &entity.SessionUser{UID: "alice", Email: "a@x.io"})
	bob.Set(ctx, entity.SessionUserKey, &entity.SessionUser{UID: "bob"})
	alice.Set(ctx, "other", "v")

	var got entity.SessionUser
	assert.True(t, alice.Get(ctx, entity.SessionUserKey, &got))
	assert.Equal(t, "a@x.io", got.Email)

	alice.Clear(ctx)
	assert.False(t, alice.Get(ctx, entity.SessionUserKey, &got))
	assert.False(t, alice.Get(ctx, "other", new(string)))
	assert.True(t, bob.Get(ctx, entity.SessionUserKey, &got))
	assert.Equal(t, "bob", got.UID)

	bob.Remove(ctx, entity.SessionUserKey)
	assert.False(t, bob.Get(ctx, entity.SessionUserKey, &got))
}

func TestMemoryCacheCorruptValueIsMiss(t *testing.T) {
	ctx := context.Background()
	provider := NewMemoryProvider("")

	SetRaw(provider, "alice", entity.SessionUserKey, []byte("{not json"))

	var got entity.SessionUser
	assert.False(t, provider.Scope("alice").Get(ctx, entity.SessionUserKey, &got))
}

func TestScopePrefix(t *testing.T) {
	assert.Equal(t, "petadopt:u1:", scopePrefix("petadopt", "u1"))
	assert.Equal(t, "u1:", scopePrefix("", "u1"))
}
