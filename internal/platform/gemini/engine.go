// Package gemini implements the decision.Engine interface using Google's
// Gemini API. The model receives the learner's activity signals and
// returns a strict JSON decision; anything that fails to parse is
// treated as a no-op rather than guessed at.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/readpath/readpath-api/internal/decision"
)

// Config holds the settings for the Gemini decision engine.
type Config struct {
	APIKey         string
	ModelName      string
	TimeoutSeconds int
}

// Engine is a Gemini-backed decision engine.
type Engine struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ decision.Engine = (*Engine)(nil)

// promptTemplate frames the signals for the model and pins the output
// contract. The model must answer with a single JSON object.
const promptTemplate = `You are the intervention advisor for a reading tutor.
Given the learner signals below, decide whether to suggest an intervention.

Signals:
%s

Respond with exactly one JSON object, no prose, of the form:
{"action":"NO_OP"} or
{"action":"SUGGEST_INTERVENTION","channel":"<hint|encourage|simplify>","reason":"<DOUBT_SPIKE|CHECKPOINT_FAIL|LOW_MASTERY|POST_SUMMARY>"}

Return {"action":"NO_OP"} unless the signals clearly warrant intervening.`

// NewEngine creates a Gemini-backed decision engine.
func NewEngine(ctx context.Context, logger *slog.Logger, cfg Config) (*Engine, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", decision.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", decision.ErrInvalidConfig)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			decision.ErrInvalidConfig, err)
	}

	return &Engine{
		logger:  logger.With(slog.String("component", "gemini_decision_engine")),
		client:  client,
		model:   cfg.ModelName,
		timeout: timeout,
	}, nil
}

// MakeDecision implements decision.Engine. The call carries its own
// deadline; on timeout or malformed output the caller degrades per its
// own policy.
func (e *Engine) MakeDecision(ctx context.Context, input decision.Input) (*decision.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	signalsJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode signals: %v", decision.ErrInvalidResponse, err)
	}

	prompt := fmt.Sprintf(promptTemplate, signalsJSON)

	e.logger.DebugContext(ctx, "requesting decision",
		slog.String("user_id", input.UserID.String()),
		slog.String("flow_state", input.Signals.FlowState),
		slog.Int("doubts_in_window", input.Signals.DoubtsInWindow))

	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", decision.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", decision.ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	text = stripCodeFence(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", decision.ErrInvalidResponse)
	}

	var d decision.Decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", decision.ErrInvalidResponse, err)
	}

	if d.Action == "" {
		return nil, fmt.Errorf("%w: missing action", decision.ErrInvalidResponse)
	}

	e.logger.DebugContext(ctx, "decision received",
		slog.String("action", d.Action),
		slog.String("reason", d.Reason))

	return &d, nil
}

// stripCodeFence removes a surrounding markdown code fence if the model
// added one despite the instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
