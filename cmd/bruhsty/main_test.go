package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var setupOnce sync.Once

func execute(t *testing.T, args ...string) string {
	t.Helper()

	setupOnce.Do(func() {
		addPersistentFlags()
		registerCommands()
		initConfig()
	})

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	return out.String()
}

func Test_CLI_Manages_Users_On_SQLite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bruhsty.yml")
	document := "log: {level: error}\ndatabase: {driver: sqlite, path: " + filepath.Join(dir, "bruhsty.db") + "}\n" +
		"channels: [{id: -1001, invite_link: 'https://t.me/+gold', level_id: 3}]\n"
	require.NoError(t, os.WriteFile(configPath, []byte(document), 0o600))

	assert.Contains(t, execute(t, "migrate", "-c", configPath), "schema is up to date")
	assert.Contains(t, execute(t, "migrate", "-c", configPath), "schema is up to date")

	execute(t, "user", "get", "42", "-c", configPath)
	assert.Contains(t, execute(t, "user", "add-email", "42", "Alice@Example.com", "-c", configPath), "verification code sent")
	execute(t, "user", "get", "7", "-c", configPath, "--otel-traces", "--otel-metrics")

	var users []userView
	output := execute(t, "user", "list", "--json", "-c", configPath)
	require.NoError(t, jsoniter.UnmarshalFromString(output, &users))

	require.Len(t, users, 2)
	assert.Equal(t, int64(7), users[0].TelegramID)
	assert.Equal(t, int64(42), users[1].TelegramID)
	require.Len(t, users[1].Emails, 1)
	assert.Equal(t, "alice@example.com", users[1].Emails[0].Address)
	assert.False(t, users[1].Emails[0].Verified)

	var channels []map[string]any
	output = execute(t, "user", "channels", "42", "--json", "-c", configPath)
	require.NoError(t, jsoniter.UnmarshalFromString(output, &channels))
	assert.Empty(t, channels)
}

func Test_ParseTelegramID(t *testing.T) {
	id, err := parseTelegramID("123456789")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	_, err = parseTelegramID("bob")
	assert.Error(t, err)
}

func Test_Repeat_Runs_Once_Without_Period(t *testing.T) {
	calls := 0
	err := repeat(context.Background(), 0, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func Test_Repeat_Stops_When_Context_Is_Done(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := repeat(ctx, 1, func(context.Context) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}
