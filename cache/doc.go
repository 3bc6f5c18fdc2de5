// Package cache provides short-TTL response caching for outbound GET
// requests.
//
// PMS and payment-processor APIs are frequently polled for slowly-changing
// data (dispute status, property configuration); caching those reads shaves
// both latency and rate-limit tokens. The httpclient package consults the
// cache before entering its resilience pipeline and stores successful GET
// responses on the way out.
//
// Keys are derived from the request shape by a Keyer so two logically
// identical requests hit the same entry regardless of header map ordering.
package cache
