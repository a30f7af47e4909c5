// Package auth provides HTTP API key authentication for the REST API.
//
// APIKey(mode, header, key) returns middleware. When mode is "apikey" and a
// key is configured, every request must carry it in header; otherwise the
// request is rejected with 401 before it reaches the API handler.
package auth
