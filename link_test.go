package htmlstate_test

import (
	"testing"

	"github.com/fwojciec/htmlstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessLinkType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want htmlstate.LinkType
	}{
		{"http URL", "http://example.com", htmlstate.LinkURL},
		{"https URL", "https://example.com/a@b", htmlstate.LinkURL},
		{"mailto", "mailto:a@b.com", htmlstate.LinkEmail},
		{"bare email", "a@b.com", htmlstate.LinkEmail},
		{"tel", "tel:+15551234", htmlstate.LinkTel},
		{"leading plus", "+15551234", htmlstate.LinkTel},
		{"item", "item:PM1|NODE1|/about", htmlstate.LinkItem},
		{"item containing at sign is email", "item:PM1|NODE1|/a@b", htmlstate.LinkEmail},
		{"relative path", "/relative/path", htmlstate.LinkURL},
		{"fragment", "#top", htmlstate.LinkURL},
		{"empty", "", htmlstate.LinkURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, htmlstate.GuessLinkType(tt.path))
		})
	}
}

func TestParseLink(t *testing.T) {
	t.Parallel()

	t.Run("strips mailto prefix", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("mailto:a@b.com")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{Type: htmlstate.LinkEmail, Path: "a@b.com"}, link)
	})

	t.Run("keeps bare email", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("a@b.com")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{Type: htmlstate.LinkEmail, Path: "a@b.com"}, link)
	})

	t.Run("strips tel prefix", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("tel:+15551234")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{Type: htmlstate.LinkTel, Path: "+15551234"}, link)
	})

	t.Run("keeps URL unchanged", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("/relative/path")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{Type: htmlstate.LinkURL, Path: "/relative/path"}, link)
	})

	t.Run("empty path is a URL", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{Type: htmlstate.LinkURL, Path: ""}, link)
	})

	t.Run("item link with locale placeholder", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("item:PM1|NODE1|/${locale}/about")

		require.NoError(t, err)
		assert.Equal(t, &htmlstate.LinkProps{
			Type:               htmlstate.LinkProjectMapNode,
			Path:               "/${locale}/about",
			ProjectMapID:       "PM1",
			NodeID:             "NODE1",
			DynamicInputValues: map[string]string{"locale": "${locale}"},
		}, link)
	})

	t.Run("item link without locale placeholder", func(t *testing.T) {
		t.Parallel()

		link, err := htmlstate.ParseLink("item:PM1|NODE1|/about")

		require.NoError(t, err)
		assert.Equal(t, htmlstate.LinkProjectMapNode, link.Type)
		assert.Equal(t, "/about", link.Path)
		assert.Equal(t, "PM1", link.ProjectMapID)
		assert.Equal(t, "NODE1", link.NodeID)
		require.NotNil(t, link.DynamicInputValues)
		assert.Empty(t, link.DynamicInputValues)
	})

	t.Run("item link with too few segments is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := htmlstate.ParseLink("item:PM1|/about")

		require.Error(t, err)
		assert.Equal(t, htmlstate.EINVALID, htmlstate.ErrorCode(err))
		assert.True(t, htmlstate.IsMalformedLinkPath(err))
	})

	t.Run("item link with too many segments is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := htmlstate.ParseLink("item:PM1|NODE1|/about|extra")

		assert.True(t, htmlstate.IsMalformedLinkPath(err))
	})
}
