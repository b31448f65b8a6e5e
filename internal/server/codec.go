package server

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// decode copies a google.protobuf.Struct request into v through its JSON form.
func decode(msg *structpb.Struct, v any) error {
	if msg == nil {
		return nil
	}
	data, err := protojson.Marshal(msg)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("protojson.Marshal > %w", err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %w", err))
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	var msg structpb.Struct
	if err := protojson.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protojson.Unmarshal > %w", err)
	}
	return &msg, nil
}

func respond(v any) (*connect.Response[structpb.Struct], error) {
	msg, err := encode(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encode response: %w", err))
	}
	return connect.NewResponse(msg), nil
}
