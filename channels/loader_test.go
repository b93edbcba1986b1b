package channels_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marcelsud/webhook-relay/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChannelsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	loader := channels.NewLoader()

	assert.True(t, loader.IsAck(channels.DefaultAckChannel))
	assert.False(t, loader.IsAck("orders"))
	assert.Equal(t, []string{channels.DefaultAckChannel}, loader.List())
}

func TestLoader_Load(t *testing.T) {
	t.Run("replaces the channel set", func(t *testing.T) {
		path := writeChannelsFile(t, "ack_channels:\n  - other-hooks\n  - ping\n")

		loader := channels.NewLoader()
		require.NoError(t, loader.Load(path))

		assert.True(t, loader.IsAck("other-hooks"))
		assert.True(t, loader.IsAck("ping"))
		assert.Equal(t, []string{"other-hooks", "ping"}, loader.List())
	})

	t.Run("rejects invalid channel names", func(t *testing.T) {
		path := writeChannelsFile(t, "ack_channels:\n  - \"bad/name\"\n")

		loader := channels.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid channel name")
		// A failed load keeps the previous set
		assert.True(t, loader.IsAck(channels.DefaultAckChannel))
	})

	t.Run("missing file", func(t *testing.T) {
		loader := channels.NewLoader()
		err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading channels file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeChannelsFile(t, "ack_channels: [unclosed\n")

		loader := channels.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing channels YAML")
	})
}
