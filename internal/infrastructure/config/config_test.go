package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, DefaultCollection, cfg.Qdrant.Collection)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_NotInitialized(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cathedral init")
}

func TestWriteDefaultAndLoad(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CATHEDRAL_LOG_LEVEL", "")
	dir := t.TempDir()

	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, DefaultCollection, cfg.Qdrant.Collection)
	assert.True(t, cfg.Log.Pretty)

	// A second init must not clobber the existing file.
	err = WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	content := []byte("llm:\n  model: gpt-4o\nsqlite:\n  path: /var/data/req.db\n")
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), content, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.LLM.Provider, "unset fields keep their defaults")
	assert.Equal(t, "/var/data/req.db", cfg.DatabasePath(dir))
}

func TestLoad_EnvFillsBlanks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("CATHEDRAL_LOG_LEVEL", "debug")
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FileKeyWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	content := []byte("llm:\n  api_key: sk-file\n")
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), content, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.LLM.APIKey)
	assert.Equal(t, "sk-env", cfg.Embedder.APIKey, "the env still fills the other blank")
}

func TestDatabasePath_Default(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/work", DefaultConfigDir, DefaultDatabaseFile), cfg.DatabasePath("/work"))
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CATHEDRAL_LOG_LEVEL", "")
	dir := t.TempDir()

	cfg := Default()
	cfg.Qdrant.Host = "qdrant.internal"
	cfg.Qdrant.Port = 7000
	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "qdrant.internal", loaded.Qdrant.Host)
	assert.Equal(t, 7000, loaded.Qdrant.Port)
}
