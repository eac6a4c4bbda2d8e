package testutil

import (
	"testing"

	"github.com/aegisops/aegis/core"
)

// Kinds extracts the ordered step kinds from an execution trace.
func Kinds(steps []core.Step) []core.StepKind {
	kinds := make([]core.StepKind, len(steps))
	for i, s := range steps {
		kinds[i] = s.Kind
	}
	return kinds
}

// RequireKinds fails the test when the trace's ordered step kinds differ from
// want.
func RequireKinds(t testing.TB, steps []core.Step, want ...core.StepKind) {
	t.Helper()

	if len(steps) != len(want) {
		t.Fatalf("trace has %d steps %v, want %d %v", len(steps), Kinds(steps), len(want), want)
	}
	for i, k := range want {
		if steps[i].Kind != k {
			t.Fatalf("step[%d] = %s, want %s (trace: %v)", i, steps[i].Kind, k, Kinds(steps))
		}
	}
}

// Roles extracts the ordered roles from a conversation.
func Roles(messages []core.Message) []core.Role {
	roles := make([]core.Role, len(messages))
	for i, m := range messages {
		roles[i] = m.Role
	}
	return roles
}
