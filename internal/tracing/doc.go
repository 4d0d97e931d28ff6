// Package tracing carries an OpenTelemetry tracer in a context.Context so
// instrumented code never reaches for a package global.
//
// A context without a tracer yields a no-op tracer, so instrumentation is
// free when tracing is not configured. NewProvider builds an SDK provider
// exporting spans as JSON to a writer (stdouttrace), which the CLI uses
// for --trace.
package tracing
