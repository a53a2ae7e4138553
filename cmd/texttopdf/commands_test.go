package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/texttopdf/pkg/texttopdf"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello\nworld\n"), 0644))

	out, err := run(t, "render", input)
	require.NoError(t, err)
	assert.Contains(t, out, "1 pages, 2 rows")

	data, err := os.ReadFile(filepath.Join(dir, "notes.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderCommand_NoSuffix(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	_, err := run(t, "render", input)
	require.NoError(t, err)
	assert.FileExists(t, input+".pdf")

	original, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "x", string(original))
}

func TestConvertCommand(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "docs", "notes.txt"), []byte("hello\n"), 0644))

	t.Run("FromFlags", func(t *testing.T) {
		out, err := run(t, "convert", "--fs-dir", base, "--bucket", "docs", "--key", "notes.txt")
		require.NoError(t, err)

		var resp texttopdf.Response
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, texttopdf.NewSuccessResponse(), resp)
		assert.FileExists(t, filepath.Join(base, "docs", "notes.pdf"))
	})

	t.Run("FromEventFile", func(t *testing.T) {
		event := filepath.Join(t.TempDir(), "event.json")
		require.NoError(t, os.WriteFile(event, []byte(`{"Records":[{"s3":{"bucket":{"name":"docs"},"object":{"key":"missing.txt"}}}]}`), 0644))

		out, err := run(t, "convert", "--fs-dir", base, "--event", event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retrieval failed")
		assert.Contains(t, out, `"statusCode": 500`)
	})

	t.Run("MemoryBackendRejected", func(t *testing.T) {
		_, err := run(t, "convert", "--bucket", "docs", "--key", "notes.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistent storage backend")
	})

	t.Run("MissingArguments", func(t *testing.T) {
		_, err := run(t, "convert")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--event")
	})
}
