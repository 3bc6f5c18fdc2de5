// Package observe provides the telemetry surface for outbound API calls:
// structured logging, OpenTelemetry metrics, and tracing, bundled behind an
// Observer that the HTTP client consumes as optional hooks.
package observe
