package rpc

import (
	"encoding/json"
	"fmt"
)

// Codec is a ConnectRPC codec for plain Go message structs. It replaces
// Connect's default "json" codec, which only accepts protobuf messages.
type Codec struct{}

// Name satisfies [connect.Codec].
func (Codec) Name() string { return "json" }

// Marshal satisfies [connect.Codec].
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal satisfies [connect.Codec]. An empty payload leaves msg unchanged.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
