package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisops/aegis/core"
)

func usage(in, out int64) core.Usage {
	return core.Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	claude := NewMock("claude-3-5-sonnet")
	gpt := NewMock("gpt-4o-mini")

	require.NoError(t, reg.Register("claude-sonnet", claude))
	require.NoError(t, reg.Register("gpt-4o-mini", gpt))

	got, err := reg.Resolve("claude-sonnet")
	require.NoError(t, err)
	assert.Same(t, Provider(claude), got)

	got, err = reg.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Same(t, Provider(gpt), got)
}

func TestRegistry_UnknownAlias(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("claude-sonnet", NewMock("claude")))

	// A substring of a registered alias must not resolve; the table is
	// explicit, not fuzzy.
	_, err := reg.Resolve("claude")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlias))
	assert.Contains(t, err.Error(), `"claude"`)

	_, err = reg.Resolve("gemini-pro")
	assert.True(t, errors.Is(err, ErrUnknownAlias))
}

func TestRegistry_RejectsBadBindings(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register("", NewMock("x")))
	assert.Error(t, reg.Register("alias", nil))
}

func TestRegistry_ReplaceAndEnumerate(t *testing.T) {
	reg := NewRegistry()
	first := NewMock("first")
	second := NewMock("second")

	require.NoError(t, reg.Register("alias", first))
	require.NoError(t, reg.Register("alias", second))
	require.NoError(t, reg.Register("another", first))

	got, err := reg.Resolve("alias")
	require.NoError(t, err)
	assert.Same(t, Provider(second), got)

	assert.Equal(t, []string{"alias", "another"}, reg.Aliases())
}

func TestMock_ScriptOrderAndRepeat(t *testing.T) {
	m := NewMock("scripted").
		EnqueueText("first", usage(100, 10)).
		EnqueueText("second", usage(100, 10))

	r1, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	r2, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	r3, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "first", r1.Content)
	assert.Equal(t, "second", r2.Content)
	assert.Equal(t, "second", r3.Content, "last scripted response should repeat")
	assert.Equal(t, 3, m.Calls())
}

func TestMock_FailAt(t *testing.T) {
	boom := errors.New("boom")
	m := NewMock("flaky").EnqueueText("ok", usage(1, 1)).FailWith(boom, 2)

	_, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}
