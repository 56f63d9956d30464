// Package observability provides OpenTelemetry tracing and metrics for the
// dispatch layer.
//
// Failures inside providers never surface through the dispatch API, so
// metrics and logs are the only place they are visible. The Metrics
// instrument set counts fan-out operations per provider and status, times
// them, and tracks queue depth and replays.
//
//	mp, _ := observability.InitMeter(ctx, observability.DefaultMeterConfig("analytics"))
//	defer mp.Shutdown(ctx)
//	metrics, _ := observability.NewMetrics(observability.Meter("analytics"))
package observability
