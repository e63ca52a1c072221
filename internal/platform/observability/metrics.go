package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scorebot_intake_queue_depth",
		Help: "Number of screenshots waiting for OCR",
	})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorebot_tasks_processed_total",
		Help: "The total number of intake tasks processed by outcome",
	}, []string{"status"})

	OCRDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scorebot_ocr_duration_seconds",
		Help:    "Duration of the full extraction pipeline per screenshot",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	RecordStoreCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorebot_record_store_calls_total",
		Help: "The total number of spreadsheet API calls by operation",
	}, []string{"op"})

	RecordStoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scorebot_record_store_duration_seconds",
		Help:    "Duration of spreadsheet API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorebot_updates_handled_total",
		Help: "The total number of inbound telegram updates by kind",
	}, []string{"kind"})
)

// Task outcome label values.
const (
	TaskStatusOK          = "ok"
	TaskStatusEmpty       = "empty"
	TaskStatusLoadFailed  = "load_failed"
	TaskStatusOCRFailed   = "ocr_failed"
	TaskStatusStoreFailed = "store_failed"
)

// ObserveRecordStoreCall counts one spreadsheet call and returns a func
// that records its duration: defer ObserveRecordStoreCall("find")().
func ObserveRecordStoreCall(op string) func() {
	RecordStoreCalls.WithLabelValues(op).Inc()

	start := time.Now()

	return func() {
		RecordStoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
