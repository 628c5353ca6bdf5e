package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamEvrald/logbook-app/internal/store/sqlite"
)

func TestNewStore(t *testing.T) {
	t.Run("plain path means sqlite", func(t *testing.T) {
		s, err := NewStore(":memory:")
		require.NoError(t, err)
		defer s.Close()

		assert.IsType(t, &sqlite.SQLiteStore{}, s)
	})

	t.Run("empty DSN is rejected", func(t *testing.T) {
		_, err := NewStore("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to determine database type")
	})
}
