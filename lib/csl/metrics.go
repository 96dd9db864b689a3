package csl

import (
	"context"
	"strings"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// metricsRecorder is the instrumentation seam SortedList calls on its hot
// path. The zero-cost noopMetricsRecorder is used unless a caller opts in
// with WithMetricsRecorder.
type metricsRecorder interface {
	onInsert()
	onInsertRetry()
	onPop()
	onPopRetry()
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) onInsert()      {}
func (noopMetricsRecorder) onInsertRetry() {}
func (noopMetricsRecorder) onPop()         {}
func (noopMetricsRecorder) onPopRetry()    {}

// otelMetricsRecorder reports csl's CAS-retry rate and advisory size
// through OpenTelemetry, the way observability.InitAppStats wires Go
// runtime counters: one meter, named counters for discrete events, an
// observable up-down counter for the eventually-consistent size.
type otelMetricsRecorder struct {
	inserts       metric.Int64Counter
	insertRetries metric.Int64Counter
	pops          metric.Int64Counter
	popRetries    metric.Int64Counter
	size          metric.Int64ObservableUpDownCounter
}

// NewOtelMetricsRecorder builds a metricsRecorder reporting under the given
// meter name. sizeFn is polled by the observable size gauge; pass the
// constructed SortedList's Size method.
func NewOtelMetricsRecorder(name string, sizeFn func() int64) metricsRecorder {
	builder := &strings.Builder{}
	builder.WriteString("csl/list")
	if strings.TrimSpace(name) != "" {
		builder.WriteString("/")
		builder.WriteString(name)
	}
	meter := otel.Meter(builder.String(), metric.WithInstrumentationVersion(otelruntime.Version()))

	r := &otelMetricsRecorder{
		inserts: lo.Must(meter.Int64Counter(
			"csl.insert.count",
			metric.WithDescription(`Number of successful Insert publishes.`),
		)),
		insertRetries: lo.Must(meter.Int64Counter(
			"csl.insert.retry.count",
			metric.WithDescription(`Number of Insert publish CAS losses.`),
		)),
		pops: lo.Must(meter.Int64Counter(
			"csl.pop.count",
			metric.WithDescription(`Number of successful pops.`),
		)),
		popRetries: lo.Must(meter.Int64Counter(
			"csl.pop.retry.count",
			metric.WithDescription(`Number of pop CAS losses.`),
		)),
	}
	if sizeFn != nil {
		r.size = lo.Must(meter.Int64ObservableUpDownCounter(
			"csl.size.approx",
			metric.WithDescription(`Advisory element count.`),
			metric.WithInt64Callback(func(_ context.Context, ob metric.Int64Observer) error {
				ob.Observe(sizeFn())
				return nil
			}),
		))
	}
	return r
}

func (r *otelMetricsRecorder) onInsert()      { r.inserts.Add(context.Background(), 1) }
func (r *otelMetricsRecorder) onInsertRetry() { r.insertRetries.Add(context.Background(), 1) }
func (r *otelMetricsRecorder) onPop()         { r.pops.Add(context.Background(), 1) }
func (r *otelMetricsRecorder) onPopRetry()    { r.popRetries.Add(context.Background(), 1) }
