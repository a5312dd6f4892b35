// Package metrics exposes Prometheus metrics for the proxy.
//
// A Collector owns a private registry (plus Go runtime and process
// collectors) and groups metrics by concern:
//
//   - aoai_proxy_requests_total{route,status}
//   - aoai_proxy_request_duration_seconds{route}
//   - aoai_proxy_upstream_latency_seconds{route}
//   - aoai_proxy_upstream_errors_total{route,error_type}
//   - aoai_proxy_token_acquisitions_total{source,result}
//   - aoai_proxy_token_acquisition_duration_seconds{source}
//   - aoai_proxy_token_cache_lookups_total{result}
//   - aoai_proxy_token_expiry_timestamp_seconds
//
// Every Record method is a no-op when metrics are disabled, so callers never
// need to check.
package metrics
