package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	buf.Reset()
	return line
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("legal_service", &buf)

	log.WithError(models.NewErrorInfo("index_error", errors.New("boom"))).Error("query failed")

	line := decodeLine(t, &buf)
	assert.Equal(t, "query failed", line["message"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "legal_service", line["service_name"])
	assert.Contains(t, line, "timestamp")

	errField, ok := line["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", errField["message"])
	assert.Equal(t, "index_error", errField["type"])
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithOutput("svc", &buf)

	base.WithPayload(map[string]interface{}{"k": "v"}).Info("child")
	_ = decodeLine(t, &buf)

	base.Info("parent")
	line := decodeLine(t, &buf)
	assert.NotContains(t, line, "payload")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}
