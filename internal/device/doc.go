// Package device is the HTTP client for the kitchen ESP32.
//
// # Wire protocol
//
// Every signal of the device lives under /api/{signal}:
//
//	GET  /api/lights               {"status":"success","lights":{"redLight":"on","greenLight":"off"}}
//	POST /api/lights/redLight/on
//	GET  /api/timer                {"status":"success","timer":"running"}
//	POST /api/timer/pause
//
// An Endpoint captures one signal: its read path, the allowed values of each
// field and the named commands. Client.Read decodes a response through a
// strict schema check and fails closed, so a body with a missing field, an
// unknown field or an unexpected value is a DecodeError rather than a
// partially-read State. Transport failures, timeouts and non-2xx statuses are
// NetworkErrors.
//
// # Retries
//
// The client never retries. Callers poll on a fixed interval, so the next
// tick is the retry, and commands are best-effort by contract.
package device
