package call

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dialtone-ai/dialtone/internal/model/call"
)

// Fixed utterances spoken when the normal generation path cannot run. The
// caller must always hear something, even on total backend failure.
const (
	RepromptUtterance = "I didn't catch that, please try again."
	ApologyUtterance  = "I'm sorry, I didn't catch that. Could you please repeat?"
)

// DefaultGenerationBudget bounds how long a caller is left waiting on the
// line for a model response before the coordinator gives up.
const DefaultGenerationBudget = 5 * time.Second

// Generator produces the assistant's next utterance from the dialogue so
// far. history excludes the utterance passed as callerText.
type Generator interface {
	Generate(ctx context.Context, history []call.Turn, callerText string) (string, error)
}

// Coordinator sequences one dialogue turn: persist what the caller said,
// obtain the assistant's reply within a time budget, persist the reply.
type Coordinator struct {
	store  *Store
	gen    Generator
	budget time.Duration
}

// NewCoordinator wires a turn coordinator around the store. gen may be nil
// when no model credentials are configured; every turn then degrades to the
// apology utterance.
func NewCoordinator(store *Store, gen Generator, budget time.Duration) *Coordinator {
	if budget <= 0 {
		budget = DefaultGenerationBudget
	}
	return &Coordinator{store: store, gen: gen, budget: budget}
}

type generation struct {
	text string
	err  error
}

// NextUtterance runs one caller/assistant exchange and returns the text the
// assistant should speak.
//
// The caller turn is appended before the model is invoked, so history
// reflects what was actually heard even if the process dies mid-generation.
// On model failure or timeout no assistant turn is recorded: a retried
// question gets answered fresh instead of anchored to a phantom reply.
func (c *Coordinator) NextUtterance(ctx context.Context, id, callerText string) string {
	if strings.TrimSpace(callerText) == "" {
		// An empty turn has no dialogue value; keep it out of the history
		// sent to the model.
		return RepromptUtterance
	}

	c.store.AppendTurn(id, call.SpeakerCaller, callerText)

	if c.gen == nil {
		log.Printf("[call] no generator configured, returning fallback for call %s", id)
		return ApologyUtterance
	}

	history := c.store.Turns(id)
	if n := len(history); n > 0 {
		history = history[:n-1]
	}

	genCtx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	results := make(chan generation, 1)
	go func() {
		text, err := c.gen.Generate(genCtx, history, callerText)
		results <- generation{text: text, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			log.Printf("[call] generation failed for call %s: %v", id, res.err)
			return ApologyUtterance
		}
		c.store.AppendTurn(id, call.SpeakerAssistant, res.text)
		return res.text
	case <-genCtx.Done():
		// Soft cancellation: the in-flight request is abandoned and any
		// late result discarded.
		log.Printf("[call] generation timed out for call %s: %v", id, genCtx.Err())
		return ApologyUtterance
	}
}
