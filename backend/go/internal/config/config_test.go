package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.MinChunkLen)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "zakoni", cfg.VectorStore.Collection)
	assert.Equal(t, "./chroma_db", cfg.VectorStore.Path)
	assert.Equal(t, "sqlite", cfg.Databases.Driver)
	assert.Equal(t, []string{"gemini-3-flash-preview", "gemini-1.5-flash"}, cfg.LLM.Models())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestParse_ExplicitValuesWin(t *testing.T) {
	raw := `
rag:
  chunkSize: 400
  minChunkLen: 20
  topK: 5
  answerTimeout: 15s
llm:
  primaryModel: only-model
vectorStore:
  provider: qdrant
`
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.RAG.ChunkSize)
	assert.Equal(t, 20, cfg.RAG.MinChunkLen)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 15*time.Second, cfg.RAG.AnswerTimeout)
	assert.Equal(t, []string{"only-model"}, cfg.LLM.Models())
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
}

func TestParse_RejectsUnknownProvider(t *testing.T) {
	_, err := Parse([]byte("vectorStore:\n  provider: faiss\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("storage:\n  provider: ftp\n"))
	assert.Error(t, err)
}

func TestParse_RejectsMinLenAboveChunkSize(t *testing.T) {
	_, err := Parse([]byte("rag:\n  chunkSize: 40\n  minChunkLen: 50\n"))
	assert.Error(t, err)
}

func TestParse_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("JWT_SECRET", "secret-from-env")

	cfg, err := Parse([]byte("llm:\n  gemini:\n    apiKey: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "from-env", cfg.Embedding.Gemini.APIKey)
	assert.Equal(t, "secret-from-env", cfg.Auth.JwtSecret)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":9090\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
}
