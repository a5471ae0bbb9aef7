// Package analytics defines the page event the navigation controller reports
// after every successful resolve, and the sinks that can receive it.
//
// # Sinks
//
//   - Prometheus counts page views per route key.
//   - S3Archive batches events as JSON lines and writes them to a bucket.
//   - Logger writes one structured log record per event.
//   - Multi fans an event out to several sinks.
//
// Sink errors never fail a navigation; the controller logs and drops them.
package analytics
