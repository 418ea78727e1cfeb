package rpc

import (
	"encoding/json"
	"fmt"
)

// jsonCodec carries plain Go structs over Connect as JSON.
// It registers under the "json" name, so requests use Content-Type application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", message, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", message, err)
	}
	return nil
}
