package db

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbot/internal/constants"
)

func TestDestinationRegistryCRUD(t *testing.T) {
	ctx := context.Background()
	reg := NewDestinationRegistry(NewStore(NewMemoryBackend()), constants.DESTINATION_MODE_LINK)

	assert.Equal(t, 0, reg.Count(ctx))
	assert.Empty(t, reg.List(ctx))

	first, err := reg.Add(ctx, "  News  ", " https://t.me/+abc ")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "News", first.Name)
	assert.Equal(t, "https://t.me/+abc", first.AccessRef)

	second, err := reg.Add(ctx, "Chat", "https://t.me/joinchat/xyz")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list := reg.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "insertion order is kept")
	assert.Equal(t, second.ID, list[1].ID)

	got, ok := reg.Get(ctx, second.ID)
	require.True(t, ok)
	assert.Equal(t, second, got)
	_, ok = reg.Get(ctx, "missing")
	assert.False(t, ok)

	assert.True(t, reg.Exists(ctx, "https://t.me/+abc"))
	assert.True(t, reg.Exists(ctx, "  https://t.me/+abc"))
	assert.False(t, reg.Exists(ctx, "https://t.me/+other"))

	removed, err := reg.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, reg.Count(ctx))
	assert.False(t, reg.Exists(ctx, "https://t.me/+abc"))

	removed, err = reg.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, reg.Count(ctx))
}

func TestDestinationRegistryRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	reg := NewDestinationRegistry(NewStore(NewMemoryBackend()), constants.DESTINATION_MODE_LINK)

	cases := map[string][2]string{
		"empty name":      {"   ", "https://t.me/+abc"},
		"long name":       {strings.Repeat("я", constants.MAX_DESTINATION_NAME_LEN+1), "https://t.me/+abc"},
		"empty ref":       {"News", ""},
		"not a t.me link": {"News", "https://example.com/+abc"},
		"chat id in link": {"News", "-1001234567890"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Add(ctx, in[0], in[1])
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, reg.Count(ctx))
		})
	}

	_, err := reg.Add(ctx, strings.Repeat("я", constants.MAX_DESTINATION_NAME_LEN), "https://t.me/+abc")
	assert.NoError(t, err, "name length is counted in runes")
}

func TestDestinationRegistryDuplicatesAreCallerChecked(t *testing.T) {
	ctx := context.Background()
	reg := NewDestinationRegistry(NewStore(NewMemoryBackend()), constants.DESTINATION_MODE_LINK)

	_, err := reg.Add(ctx, "A", "https://t.me/+same")
	require.NoError(t, err)
	require.True(t, reg.Exists(ctx, "https://t.me/+same"))

	// Add сам по себе дубликаты не отклоняет.
	_, err = reg.Add(ctx, "B", "https://t.me/+same")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count(ctx))
}

func TestDestinationRegistryChatMode(t *testing.T) {
	ctx := context.Background()
	reg := NewDestinationRegistry(NewStore(NewMemoryBackend()), constants.DESTINATION_MODE_CHAT)
	assert.Equal(t, constants.DESTINATION_MODE_CHAT, reg.Mode())

	_, err := reg.Add(ctx, "Channel", "@my_channel")
	assert.NoError(t, err)
	_, err = reg.Add(ctx, "Group", "-1001234567890")
	assert.NoError(t, err)

	_, err = reg.Add(ctx, "Link", "https://t.me/+abc")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = reg.Add(ctx, "Short", "@ab")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, reg.Count(ctx))
}
