// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort        - port for the REST API (default 8080)
//   - LogLevel        - debug | info | warn | error (default info)
//   - ShutdownTimeout - graceful shutdown bound (default 10s)
//   - Auth.Mode       - "apikey" or "none"
//   - Auth.KeyEnv     - environment variable holding the expected API key
//   - Auth.Header     - HTTP header name (default "X-API-Key")
//   - Formulas.Path   - CSV coefficient table; empty uses the embedded table
//   - Metrics.Enabled - serve Prometheus text exposition (default true)
//   - Metrics.Path    - exposition path (default /metrics)
//
// Load(path) applies defaults before unmarshalling, then validates.
//
// Watch(ctx, path, onChange) re-loads the file on write/create events via
// fsnotify. The server only applies LogLevel from a reloaded config; the
// coefficient table is never swapped at runtime.
package config
