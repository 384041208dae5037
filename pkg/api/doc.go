// Package api defines the fridgeshare.v1 RPC surface.
//
// Messages are plain Go structs carried over Connect with a JSON codec, so the
// same handlers serve curl, browsers and the Go clients in this package:
//
//	curl -X POST http://localhost:8080/fridgeshare.v1.LedgerService/GetBalances \
//	  -H 'Authorization: Bearer <token>' -H 'Content-Type: application/json' -d '{}'
//
// The wire format is JSON only. There are no .proto definitions behind these
// services, so clients expecting a protobuf Connect or gRPC service (binary
// application/proto payloads, protojson field names) cannot talk to them.
// Field names follow the snake_case json tags on the structs.
package api
