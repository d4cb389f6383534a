// Package rpc is the wire contract between the taskboard server and client:
// the gRPC service name, method names, message types, and the JSON codec
// that carries them.
//
// Messages are plain Go structs with json tags. The codec is registered under
// the "json" content subtype; clients select it with
// grpc.CallContentSubtype(rpc.CodecName) and the server picks it up from the
// request's content-type automatically.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the JSON codec.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
