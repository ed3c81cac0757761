package workflow

import (
	"regexp"

	"github.com/leadforge/assessment-backend/internal/entity"
)

// emailPattern is deliberately loose; the fallback only needs a plausible
// address to route the lead, not RFC-grade validation.
var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+`)

// traceFromSteps renders the step logs into the execution_trace object of
// the API response.
func traceFromSteps(requestID string, steps []entity.StepLog) map[string]any {
	summaries := make([]map[string]any, 0, len(steps))
	for _, step := range steps {
		summary := map[string]any{
			"step":        step.StepName,
			"model":       step.LLMModel,
			"duration_ms": step.DurationMS,
			"success":     step.Success,
			"tokens_in":   step.TokensIn,
			"tokens_out":  step.TokensOut,
		}
		if step.Error != nil {
			summary["error"] = *step.Error
		}
		summaries = append(summaries, summary)
	}

	return map[string]any{
		"request_id": requestID,
		"steps":      summaries,
	}
}
