package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leadforge/assessment-backend/internal/entity"
)

// decodeStructured strips markdown fences the model sometimes wraps around
// JSON, unmarshals the payload and validates it against the schema. Any
// failure is an ErrSchemaDecode.
func decodeStructured(raw string, out interface{ Validate() error }) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Some models prepend commentary; cut to the outermost JSON object.
	if start := strings.Index(text, "{"); start > 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrSchemaDecode, err)
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrSchemaDecode, err)
	}

	return nil
}
