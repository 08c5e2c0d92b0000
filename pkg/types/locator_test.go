package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		authority string
		path      []string
		id        int64
		hasID     bool
	}{
		{
			name:      "collection",
			input:     "content://com.example.notes/notes",
			authority: "com.example.notes",
			path:      []string{"notes"},
		},
		{
			name:      "item",
			input:     "content://com.example.notes/notes/42",
			authority: "com.example.notes",
			path:      []string{"notes"},
			id:        42,
			hasID:     true,
		},
		{
			name:      "nested collection",
			input:     "content://com.example.notes/notes/archived",
			authority: "com.example.notes",
			path:      []string{"notes", "archived"},
		},
		{
			name:      "trailing slash is ignored",
			input:     "content://com.example.notes/notes/",
			authority: "com.example.notes",
			path:      []string{"notes"},
		},
		{
			name:      "authority only",
			input:     "content://com.example.notes",
			authority: "com.example.notes",
		},
		{
			name:      "id zero is an id",
			input:     "content://a/notes/0",
			authority: "a",
			path:      []string{"notes"},
			id:        0,
			hasID:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseLocator(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.authority, l.Authority)
			assert.Equal(t, len(tt.path), len(l.Path))
			assert.True(t, l.PathEquals(tt.path))
			assert.Equal(t, tt.hasID, l.HasID)
			assert.Equal(t, tt.id, l.ID)
		})
	}
}

func TestParseLocatorErrors(t *testing.T) {
	inputs := []string{
		"http://com.example.notes/notes",
		"content:///notes",
		"content://a/notes//5",
		"content://a/notes/99999999999999999999",
		"",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLocator(in)
			if !errors.Is(err, ErrInvalidLocator) {
				t.Fatalf("expected ErrInvalidLocator for %q, got %v", in, err)
			}
		})
	}
}

func TestLocatorStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"content://com.example.notes",
		"content://com.example.notes/notes",
		"content://com.example.notes/notes/7",
		"content://com.example.notes/notes/archived/7",
	} {
		l := MustParseLocator(s)
		assert.Equal(t, s, l.String())
	}
}

func TestLocatorWithAppendedID(t *testing.T) {
	base := NewLocator("a", "notes")
	item := base.WithAppendedID(5)

	assert.Equal(t, "content://a/notes/5", item.String())
	assert.False(t, base.HasID, "receiver must not be modified")

	item.Path[0] = "changed"
	assert.Equal(t, "notes", base.Path[0], "paths must not be shared")

	assert.True(t, item.Collection().Equal(base))
}

func TestLocatorEqual(t *testing.T) {
	a := MustParseLocator("content://a/notes/5")
	assert.True(t, a.Equal(MustParseLocator("content://a/notes/5")))
	assert.False(t, a.Equal(MustParseLocator("content://a/notes/6")))
	assert.False(t, a.Equal(MustParseLocator("content://b/notes/5")))
	assert.False(t, a.Equal(MustParseLocator("content://a/notes")))
	assert.False(t, a.Equal(MustParseLocator("content://a/todos/5")))
}

func TestLocatorIsDescendantOf(t *testing.T) {
	notes := MustParseLocator("content://a/notes")
	item := MustParseLocator("content://a/notes/5")

	assert.True(t, item.IsDescendantOf(notes))
	assert.True(t, item.IsDescendantOf(item))
	assert.True(t, notes.IsDescendantOf(MustParseLocator("content://a")))
	assert.False(t, notes.IsDescendantOf(item))
	assert.False(t, item.IsDescendantOf(MustParseLocator("content://b/notes")))
	assert.False(t, MustParseLocator("content://a/notesx/5").IsDescendantOf(notes))
}
