package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type lookupArgs struct {
	IP      string `json:"ip" jsonschema:"description=IPv4 or IPv6 address to check"`
	Verbose bool   `json:"verbose,omitempty"`
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(lookupArgs{})

	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "$schema")
	assert.NotContains(t, schema, "$ref")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema should inline properties at the top level: %v", schema)
	assert.Contains(t, props, "ip")
	assert.Contains(t, props, "verbose")
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	var vErr *util.ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
	assert.Equal(t, "x", vErr.Field)

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Message, "expected type integer")
}

func TestValidateParameters_StringRequiredList(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"q": map[string]any{"type": "string"}},
		"required":   []string{"q"},
	}

	assert.Error(t, util.ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, util.ValidateParameters(map[string]any{"q": "cve"}, schema))
}

// -------------------- Func Tests --------------------

func sumParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func TestFunc_Success(t *testing.T) {
	sumTool := NewFunc("sum", "Add numbers", sumParams(), func(_ context.Context, _ core.ExecContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Execute(context.Background(), core.ExecContext{OrganizationID: "org-1"}, map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunc_ValidationError(t *testing.T) {
	sumTool := NewFunc("sum", "Add numbers", sumParams(), func(_ context.Context, _ core.ExecContext, args map[string]any) (any, error) {
		t.Fatal("fn must not run on invalid args")
		return nil, nil
	})

	_, err := sumTool.Execute(context.Background(), core.ExecContext{}, map[string]any{"a": 2.0})
	require.Error(t, err)
	var toolErr *Error
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Equal(t, "sum", toolErr.Tool)
}

func TestFunc_ExecutionErrorWrapped(t *testing.T) {
	failTool := NewFunc("fail", "Always fails", sumParams(), func(_ context.Context, _ core.ExecContext, _ map[string]any) (any, error) {
		return nil, errors.New("timeout")
	})

	_, err := failTool.Execute(context.Background(), core.ExecContext{}, map[string]any{"a": 1.0, "b": 2.0})
	require.Error(t, err)
	var toolErr *Error
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "timeout", toolErr.Message)
}

func TestFunc_CustomErrorPassthrough(t *testing.T) {
	custom := NewError("custom", "rate limited", "RATE_LIMITED")
	failTool := NewFunc("custom", "Custom error", sumParams(), func(_ context.Context, _ core.ExecContext, _ map[string]any) (any, error) {
		return nil, custom
	})

	_, err := failTool.Execute(context.Background(), core.ExecContext{}, map[string]any{"a": 1.0, "b": 2.0})
	var toolErr *Error
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

func TestFunc_ExecContextDelivered(t *testing.T) {
	var got core.ExecContext
	echoTool := NewFunc("echo", "Echo context", map[string]any{"type": "object", "properties": map[string]any{}}, func(_ context.Context, execCtx core.ExecContext, _ map[string]any) (any, error) {
		got = execCtx
		return "ok", nil
	})

	_, err := echoTool.Execute(context.Background(), core.ExecContext{OrganizationID: "org-7", AgentID: "agent-9", UserID: "user-3"}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "org-7", got.OrganizationID)
	assert.Equal(t, "agent-9", got.AgentID)
	assert.Equal(t, "user-3", got.UserID)
}

// -------------------- Registry Tests --------------------

func TestRegistry_ExactNameLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewFunc("lookup_ip", "IP reputation", sumParams(), nil)))
	require.NoError(t, reg.Register(NewFunc("lookup_cve", "CVE details", sumParams(), nil)))

	_, ok := reg.Get("lookup_ip")
	assert.True(t, ok)
	_, ok = reg.Get("lookup")
	assert.False(t, ok, "partial names must not resolve")

	assert.Equal(t, []string{"lookup_cve", "lookup_ip"}, reg.Names())
}

func TestRegistry_SelectSubset(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewFunc("a", "", sumParams(), nil)))
	require.NoError(t, reg.Register(NewFunc("b", "", sumParams(), nil)))
	require.NoError(t, reg.Register(NewFunc("c", "", sumParams(), nil)))

	selected := reg.Select("c", "a", "missing")
	require.Len(t, selected, 2)
	assert.Equal(t, "c", selected[0].Name())
	assert.Equal(t, "a", selected[1].Name())

	all := reg.Select()
	assert.Len(t, all, 3)
}

func TestDefinitions(t *testing.T) {
	tools := []Tool{
		NewFunc("x", "does x", sumParams(), nil),
	}

	defs := Definitions(tools)
	require.Len(t, defs, 1)
	assert.Equal(t, "x", defs[0].Name)
	assert.Equal(t, "does x", defs[0].Description)
	assert.Equal(t, sumParams(), defs[0].Parameters)
}
