// Package metrics keeps the server's request and estimate metrics on a
// private client_golang registry and serves them in the Prometheus
// exposition format.
//
// Exposed families, besides the Go runtime collector:
//
//	ivfodds_estimates_total{outcome}                 counter
//	ivfodds_http_requests_total{route,method,code}   counter
//	ivfodds_http_request_duration_seconds{route}     summary (count and sum)
//	ivfodds_formula_rows                             gauge
package metrics
