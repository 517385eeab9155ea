// Package monitor implements the gRPC surface the alarm banner talks to.
//
// Messages are protobuf well-known types (Struct, ListValue and wrappers),
// so the service needs no generated code: service_desc.go declares the
// service by hand in the same shape protoc-gen-go-grpc would.
package monitor
