// Package api implements the HTTP REST API for ivfodds-server.
//
// New(estimator, recorder, middleware...) returns an http.Handler that serves:
//
//	POST /api/v1/estimate  - success-rate estimate from JSON or form input
//	GET  /api/v1/formulas  - selection keys and label of every table row
//	GET  /api/v1/reasons   - accepted infertility reasons plus "no_reason"
//	GET  /api/v1/health    - liveness and loaded table size
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Carry an X-Request-ID header, including on 405 and middleware
//     rejections; estimate bodies repeat it as request_id
//
// Decimal values are rendered as JSON strings so no precision is lost.
// JSON types are defined in types.go. No external HTTP framework is used.
package api
