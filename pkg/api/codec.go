package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// JSONCodec encodes messages as plain JSON. Registering it under the name
// "json" lets Connect serve application/json requests without generated
// protobuf types.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON returns the handler option installing JSONCodec.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
