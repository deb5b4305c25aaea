package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClipboard_NoUtilityAvailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := SystemClipboard{}.Copy("groot_dev_abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClipboard)
}
