package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics は勤怠 API のコレクタをまとめます。専用レジストリを持つため、
// 複数インスタンスを生成しても登録が衝突しません。
type Metrics struct {
	registry *prometheus.Registry

	PunchOperations *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New は Metrics を生成します。
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PunchOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "punch_operations_total",
			Help:      "Punch operations by kind and result.",
		}, []string{"operation", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Handler は /metrics 用の HTTP ハンドラを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePunch は打刻操作の結果を記録します。
func (m *Metrics) ObservePunch(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PunchOperations.WithLabelValues(operation, result).Inc()
}

// Middleware はリクエスト所要時間を記録する chi ミドルウェアです。
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(recorder.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
