package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3_publish",
		Name:      "list_pages_total",
		Help:      "Total listing pages fetched from the store.",
	})
	ObjectsListed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3_publish",
		Name:      "objects_listed_total",
		Help:      "Total objects returned by listings.",
	})
	MarkersSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3_publish",
		Name:      "markers_skipped_total",
		Help:      "Total directory markers excluded from publishing.",
	})
	ACLUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s3_publish",
		Name:      "acl_updates_total",
		Help:      "Public-read ACL updates by result (success, failed).",
	}, []string{"result"})
)

var registerOnce sync.Once

// Init registers collectors with the default registry. Later calls are no-ops.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ListPages, ObjectsListed, MarkersSkipped, ACLUpdates)
	})
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// RecordACL counts one ACL update outcome.
func RecordACL(ok bool) {
	if ok {
		ACLUpdates.WithLabelValues("success").Inc()
		return
	}
	ACLUpdates.WithLabelValues("failed").Inc()
}
