package anthropic

import (
	"encoding/json"
	"fmt"
)

// unmarshalStreamEvent parses one SSE data payload into its typed envelope.
func unmarshalStreamEvent(payload string) (*wireStreamEvent, error) {
	var event wireStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("failed to parse stream event: %w", err)
	}
	return &event, nil
}
