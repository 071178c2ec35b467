package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkit/merkit/internal/llm"
	"github.com/merkit/merkit/internal/mer"
)

func testPack() *mer.ContextPack {
	return &mer.ContextPack{
		Figma: mer.FigmaSection{
			EntityCards: []mer.EntityCard{
				{Name: "User", Attributes: []mer.AttributeStub{{Name: "id"}}, Sources: []string{"figma:n1"}},
			},
		},
	}
}

func TestRunnerPromptOrder(t *testing.T) {
	var captured string
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		captured = prompt
		return `{"entities":[],"open_questions":[]}`, nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	prior := &mer.PartialResult{Entities: []mer.Entity{{Name: "User"}}}

	_, err := runner.Run(context.Background(), AttributesPass, prior, testPack())
	require.NoError(t, err)

	sys := strings.Index(captured, "data modeling expert")
	instr := strings.Index(captured, "PASS INSTRUCTIONS:")
	partial := strings.Index(captured, "PARTIAL MER (ENTITIES):")
	pack := strings.Index(captured, "CONTEXT PACK:")

	require.True(t, sys >= 0 && instr > sys && partial > instr && pack > partial,
		"prompt sections out of order: sys=%d instr=%d partial=%d pack=%d", sys, instr, partial, pack)
	assert.Contains(t, captured, `"figma:n1"`)
}

func TestRunnerEntitiesPassHasNoPartialSection(t *testing.T) {
	var captured string
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		captured = prompt
		return `{"entities":[],"open_questions":[]}`, nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	_, err := runner.Run(context.Background(), EntitiesPass, nil, testPack())
	require.NoError(t, err)
	assert.NotContains(t, captured, "PARTIAL MER")
}

func TestRunnerRetriesOnceThenFallsBack(t *testing.T) {
	calls := 0
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	prior := &mer.PartialResult{Entities: []mer.Entity{{Name: "User"}}}

	result, err := runner.Run(context.Background(), AttributesPass, prior, testPack())
	require.NoError(t, err)

	// One retry after the first empty response: two calls total.
	assert.Equal(t, 2, calls)

	// Fallback reuses the prior entity list and surfaces one open question
	// with a system-level citation.
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "User", result.Entities[0].Name)
	require.Len(t, result.OpenQuestions, 1)
	assert.Contains(t, result.OpenQuestions[0].Question, "attributes")
	assert.Equal(t, []string{"system:llm_error"}, result.OpenQuestions[0].Sources)
}

func TestRunnerRecoversAfterOneEmptyResponse(t *testing.T) {
	calls := 0
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", nil
		}
		return `{"entities":[{"name":"User"}],"open_questions":[]}`, nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	result, err := runner.Run(context.Background(), EntitiesPass, nil, testPack())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, result.Entities, 1)
	assert.Empty(t, result.OpenQuestions)
}

func TestRunnerMalformedOutputFallsBack(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "this is not JSON", nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	prior := &mer.PartialResult{Entities: []mer.Entity{{Name: "Order"}}}

	result, err := runner.Run(context.Background(), RelationshipsPass, prior, testPack())
	require.NoError(t, err)

	assert.Equal(t, []mer.Entity{{Name: "Order"}}, result.Entities)
	require.Len(t, result.OpenQuestions, 1)
	assert.Equal(t, []string{"system:json_error"}, result.OpenQuestions[0].Sources)
}

func TestRunnerClientErrorFallsBack(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", assert.AnError
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	result, err := runner.Run(context.Background(), EntitiesPass, nil, testPack())
	require.NoError(t, err)

	assert.Empty(t, result.Entities)
	require.Len(t, result.OpenQuestions, 1)
	assert.Equal(t, []string{"system:llm_error"}, result.OpenQuestions[0].Sources)
}

func TestRunnerUnwrapsFencedJSON(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "```json\n{\"entities\":[{\"name\":\"User\"}],\"open_questions\":[]}\n```", nil
	})

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	result, err := runner.Run(context.Background(), EntitiesPass, nil, testPack())
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "User", result.Entities[0].Name)
}

func TestRunnerHonorsRetryPolicyBound(t *testing.T) {
	calls := 0
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", nil
	})

	runner := NewRunner(client, RetryPolicy{MaxAttempts: 4}, nil)
	_, err := runner.Run(context.Background(), EntitiesPass, nil, testPack())
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestRunnerContextCancellation(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(client, DefaultRetryPolicy, nil)
	_, err := runner.Run(ctx, EntitiesPass, nil, testPack())
	assert.ErrorIs(t, err, context.Canceled)
}
