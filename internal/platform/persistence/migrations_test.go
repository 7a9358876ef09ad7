package persistence

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_InputValidation(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("EmptyMigrationsPath", func(t *testing.T) {
		err := RunMigrations(logger, "postgres://test", "")
		assert.EqualError(t, err, "migrations path cannot be empty")
	})

	t.Run("EmptyDatabaseURL", func(t *testing.T) {
		err := RunMigrations(logger, "", "migrations/postgres")
		assert.EqualError(t, err, "database URL cannot be empty")
	})
}

func TestMigrationSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations/postgres", migrationSourceURL("migrations/postgres"))
	assert.Equal(t, "file:///srv/migrations", migrationSourceURL("/srv/migrations"))
	assert.Equal(t, "file://./migrations/postgres", migrationSourceURL("file://./migrations/postgres"))
}

func TestMigrationLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ml := migrationLogger{logger: logger}

	ml.Printf("Start buffering %d/u %s\n", 1, "create_transactions")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "Start buffering 1/u create_transactions", entry["msg"])
	assert.Equal(t, "migrate", entry["component"])
	assert.False(t, ml.Verbose())
}

func TestSchema_AmountHasNoFixedScale(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "postgres", "000001_create_transactions.up.sql"))
	require.NoError(t, err)

	column := regexp.MustCompile(`(?m)^\s*amount\s+([A-Z]+(?:\([^)]*\))?)\s+NOT NULL CHECK \(amount > 0\)`)
	match := column.FindSubmatch(raw)
	require.NotNil(t, match, "amount column must be positive-checked")
	assert.Equal(t, "NUMERIC", string(match[1]), "amount must keep every decimal place the validator accepts")
}
