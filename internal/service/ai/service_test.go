package ai

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/dialtone-ai/dialtone/internal/model/call"
)

func TestBuildHistoryMessages(t *testing.T) {
	turns := []call.Turn{
		{Speaker: call.SpeakerAssistant, Text: "Hello!"},
		{Speaker: call.SpeakerCaller, Text: "Hi, what's the weather?"},
		{Speaker: call.SpeakerAssistant, Text: "It's sunny."},
	}

	messages := buildHistoryMessages(turns)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Role != schema.Assistant || messages[0].Content != "Hello!" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != schema.User {
		t.Fatalf("expected user role, got %s", messages[1].Role)
	}
}

func TestBuildHistoryMessagesLimit(t *testing.T) {
	var turns []call.Turn
	for i := 0; i < 15; i++ {
		turns = append(turns, call.Turn{Speaker: call.SpeakerCaller, Text: fmt.Sprintf("turn %d", i)})
	}

	messages := buildHistoryMessages(turns)
	if len(messages) != historyLimit {
		t.Fatalf("expected history capped at %d, got %d", historyLimit, len(messages))
	}
	if messages[0].Content != "turn 5" {
		t.Fatalf("expected oldest turns trimmed, first is %s", messages[0].Content)
	}
}

func TestBuildHistoryMessagesEmpty(t *testing.T) {
	if messages := buildHistoryMessages(nil); messages != nil {
		t.Fatalf("expected nil history, got %+v", messages)
	}
}
