//go:build grpc_vectorkit

package rpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	// Registers globally for the process; individual calls opt in via
	// grpc.CallContentSubtype("json"), so this has no effect on any other
	// gRPC client/server sharing the binary unless it also requests the
	// "json" subtype.
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements grpc's encoding.Codec using JSON, standing in for
// the protobuf wire codec protoc-generated services would use.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }
