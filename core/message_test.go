package core

import "testing"

func TestMessage_Constructors(t *testing.T) {
	u := NewUserMessage("hello")
	if u.Role != RoleUser || u.Content != "hello" {
		t.Fatalf("NewUserMessage malformed: %+v", u)
	}

	call := ToolCall{ID: "call-1", Name: "lookup_ip", Arguments: `{"ip":"1.2.3.4"}`}
	a := NewAssistantMessage("checking", call)
	if a.Role != RoleAssistant || len(a.ToolCalls) != 1 || a.ToolCalls[0].Name != "lookup_ip" {
		t.Fatalf("NewAssistantMessage malformed: %+v", a)
	}

	res := ToolResult{CallID: "call-1", Name: "lookup_ip", Content: `{"score":9}`}
	tm := NewToolMessage(res)
	if tm.Role != RoleTool || tm.ToolCallID != "call-1" || tm.Name != "lookup_ip" || tm.Content != `{"score":9}` {
		t.Fatalf("NewToolMessage malformed: %+v", tm)
	}
}

func TestCloneMessages_DeepCopy(t *testing.T) {
	orig := []Message{
		NewUserMessage("hi"),
		NewAssistantMessage("", ToolCall{ID: "c1", Name: "x", Arguments: "{}"}),
	}

	clone := CloneMessages(orig)
	if len(clone) != len(orig) {
		t.Fatalf("clone length mismatch: %d != %d", len(clone), len(orig))
	}

	clone[0].Content = "mutated"
	clone[1].ToolCalls[0].Name = "mutated"

	if orig[0].Content != "hi" {
		t.Errorf("clone mutation leaked into original content: %q", orig[0].Content)
	}
	if orig[1].ToolCalls[0].Name != "x" {
		t.Errorf("clone mutation leaked into original tool calls: %q", orig[1].ToolCalls[0].Name)
	}
}

func TestCloneMessages_Nil(t *testing.T) {
	if CloneMessages(nil) != nil {
		t.Error("expected nil clone for nil input")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id: %q", id)
		}
		seen[id] = true
	}
}
