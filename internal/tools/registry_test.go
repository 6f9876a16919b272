package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{ name string }

func (e *echoTool) Name() string               { return e.name }
func (e *echoTool) Description() string         { return "Echoes input" }
func (e *echoTool) InputSchema() map[string]any { return map[string]any{"type": "object"} }
func (e *echoTool) Execute(ctx context.Context, args map[string]any) Result {
	return OK(args)
}

func TestToolRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&echoTool{name: "echo"})
	tool, ok := reg.Get("echo")
	require.True(t, ok, "echo tool not found")
	assert.Equal(t, "echo", tool.Name())
}

func TestToolRegistry_Call(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&echoTool{name: "echo"})
	res, err := reg.Call(context.Background(), "echo", map[string]any{"msg": "hello"})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.JSONEq(t, `{"msg":"hello"}`, res.Text())
}

func TestToolRegistry_Call_Unknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Call(context.Background(), "unknown", nil)
	assert.Error(t, err)
}

func TestToolRegistry_ListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"c", "a", "b"} {
		reg.Register(&echoTool{name: n})
	}
	infos := reg.AllTools()
	require.Len(t, infos, 3)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)
	assert.Equal(t, "c", infos[2].Name)
	assert.Equal(t, "object", infos[0].InputSchema["type"])
}

func TestResult_Text(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", OK(map[string]int{"a": 1}).Text())
	assert.Equal(t, "nope", Fail(StatusUpstreamError, "nope").Text())
	assert.True(t, Fail(StatusUpstreamError, "x").Failed())
	assert.True(t, Fail(StatusPreconditionFailed, "x").Failed())
	assert.False(t, Fail(StatusNotFound, "x").Failed())
	assert.False(t, OK(nil).Failed())
}
