/*
inject.go - Appending the state block to outbound prompt payloads

PURPOSE:
  The host hands over its model-prompt payload in one of three shapes;
  injection appends a system-role text block without disturbing
  anything already present (append-only in all cases):

    1. a JSON array of {role, content} pairs
    2. an object with a "messages" array
    3. an object with a "prompt" string
*/
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/warp/life-engine/engine"
)

// Inject appends text as a system message to payload, returning the
// rewritten payload. Unrecognized shapes fail with ErrInvalidInput.
func Inject(payload json.RawMessage, text string) (json.RawMessage, error) {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: prompt payload is not JSON: %v", engine.ErrInvalidInput, err)
	}

	systemMsg := map[string]any{"role": "system", "content": text}

	switch v := decoded.(type) {
	case []any:
		// Shape 1: bare message array.
		return json.Marshal(append(v, systemMsg))

	case map[string]any:
		if messages, ok := v["messages"].([]any); ok {
			// Shape 2: {messages: [...]}.
			v["messages"] = append(messages, systemMsg)
			return json.Marshal(v)
		}
		if promptStr, ok := v["prompt"].(string); ok {
			// Shape 3: {prompt: "..."}.
			v["prompt"] = promptStr + "\n\n" + text
			return json.Marshal(v)
		}
	}
	return nil, fmt.Errorf("%w: unsupported prompt payload shape", engine.ErrInvalidInput)
}
