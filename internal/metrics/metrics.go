package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indexer_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// Submissions counts terminal URL outcomes by status
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_submissions_total",
			Help: "Number of URL submissions by terminal status",
		},
		[]string{"status"},
	)

	SubmissionRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "indexer_submission_retries_total",
			Help: "Number of retries after transient transport failures",
		},
	)

	SubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indexer_submission_duration_seconds",
			Help:    "Duration of a URL submission including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	AccountBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indexer_account_batch_duration_seconds",
			Help:    "Duration of one account batch",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_runs_total",
			Help: "Number of indexing runs by result",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(
		HTTPRequests,
		RequestDuration,
		Submissions,
		SubmissionRetries,
		SubmissionDuration,
		AccountBatchDuration,
		Runs,
	)
}
