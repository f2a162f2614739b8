package call_test

import (
	"context"
	"errors"
	"testing"
	"time"

	model "github.com/dialtone-ai/dialtone/internal/model/call"
	call "github.com/dialtone-ai/dialtone/internal/service/call"
)

type stubGenerator struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, history []model.Turn, callerText string) (string, error) {
	g.calls++
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.reply, g.err
}

func TestNextUtteranceAppendsBothTurns(t *testing.T) {
	store := call.NewStore()
	store.CreateIfAbsent("CA1", "+15551234567")
	gen := &stubGenerator{reply: "It's sunny."}
	coordinator := call.NewCoordinator(store, gen, time.Second)

	reply := coordinator.NextUtterance(context.Background(), "CA1", "What's the weather?")
	if reply != "It's sunny." {
		t.Fatalf("unexpected reply: %s", reply)
	}

	turns := store.Turns("CA1")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != model.SpeakerCaller || turns[0].Text != "What's the weather?" {
		t.Fatalf("unexpected caller turn: %+v", turns[0])
	}
	if turns[1].Speaker != model.SpeakerAssistant || turns[1].Text != "It's sunny." {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestNextUtteranceBlankInputRepromptsWithoutGenerating(t *testing.T) {
	store := call.NewStore()
	store.CreateIfAbsent("CA1", "+15551234567")
	gen := &stubGenerator{reply: "should not be used"}
	coordinator := call.NewCoordinator(store, gen, time.Second)

	reply := coordinator.NextUtterance(context.Background(), "CA1", "   ")
	if reply != call.RepromptUtterance {
		t.Fatalf("expected re-prompt, got %s", reply)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run for blank input, ran %d times", gen.calls)
	}
	if turns := store.Turns("CA1"); len(turns) != 0 {
		t.Fatalf("blank input must not touch history, got %d turns", len(turns))
	}
}

func TestNextUtteranceGeneratorFailureKeepsCallerTurnOnly(t *testing.T) {
	store := call.NewStore()
	store.CreateIfAbsent("CA1", "+15551234567")
	gen := &stubGenerator{err: errors.New("provider exploded")}
	coordinator := call.NewCoordinator(store, gen, time.Second)

	reply := coordinator.NextUtterance(context.Background(), "CA1", "hello?")
	if reply != call.ApologyUtterance {
		t.Fatalf("expected apology, got %s", reply)
	}

	turns := store.Turns("CA1")
	if len(turns) != 1 {
		t.Fatalf("expected only the caller turn, got %d turns", len(turns))
	}
	if turns[0].Speaker != model.SpeakerCaller {
		t.Fatalf("expected caller turn, got %+v", turns[0])
	}
}

func TestNextUtteranceTimeoutYieldsApology(t *testing.T) {
	store := call.NewStore()
	store.CreateIfAbsent("CA1", "+15551234567")
	gen := &stubGenerator{reply: "too late", delay: 200 * time.Millisecond}
	coordinator := call.NewCoordinator(store, gen, 20*time.Millisecond)

	start := time.Now()
	reply := coordinator.NextUtterance(context.Background(), "CA1", "hello?")
	if reply != call.ApologyUtterance {
		t.Fatalf("expected apology on timeout, got %s", reply)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Fatalf("coordinator waited past its budget: %v", elapsed)
	}

	turns := store.Turns("CA1")
	if len(turns) != 1 || turns[0].Speaker != model.SpeakerCaller {
		t.Fatalf("expected only the caller turn after timeout, got %+v", turns)
	}
}

func TestNextUtteranceNilGenerator(t *testing.T) {
	store := call.NewStore()
	store.CreateIfAbsent("CA1", "+15551234567")
	coordinator := call.NewCoordinator(store, nil, time.Second)

	reply := coordinator.NextUtterance(context.Background(), "CA1", "hello?")
	if reply != call.ApologyUtterance {
		t.Fatalf("expected apology without a generator, got %s", reply)
	}
	if turns := store.Turns("CA1"); len(turns) != 1 {
		t.Fatalf("expected the caller turn to be kept, got %d turns", len(turns))
	}
}
