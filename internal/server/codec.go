package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/label-approvals/internal/common"
)

// decodeStruct maps a request Struct onto a JSON-tagged Go value. Unknown fields are rejected.
func decodeStruct(in *structpb.Struct, dst any) error {
	return decodeInto(in, dst, true)
}

func decodeInto(in *structpb.Struct, dst any, strict bool) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return common.NewAppError("INVALID_REQUEST", "encode request", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return common.NewAppError("INVALID_REQUEST", "decode request", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	return nil
}

// encodeStruct maps a JSON-tagged Go value onto a Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
