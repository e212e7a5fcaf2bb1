package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestNew_FiltersDebugByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	level.Debug(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "level=warn")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Verbose: true, RunID: "abc"})

	level.Debug(logger).Log("msg", "worker started", "worker", 3)

	out := buf.String()
	assert.Contains(t, out, "level=debug")
	assert.Contains(t, out, "worker=3")
	assert.Contains(t, out, "run_id=abc")
	assert.Contains(t, out, "caller=")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{JSON: true})

	level.Error(logger).Log("msg", "boom")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "expected JSON, got %q", line)
	assert.Contains(t, line, `"msg":"boom"`)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.NoError(t, OrNop(nil).Log("msg", "ignored"))
}
