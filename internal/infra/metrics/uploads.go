package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(uploadsStoredTotal, uploadBytesTotal, downloadsTotal) }

var uploadsStoredTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uploads_stored_total",
		Help: "Upload rows written, labeled by origin (source/result).",
	},
	[]string{"origin"},
)

var uploadBytesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upload_bytes_total",
		Help: "Bytes written into the upload store, labeled by origin.",
	},
	[]string{"origin"},
)

var downloadsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "downloads_total",
		Help: "Completed file downloads.",
	},
)

func ObserveUploadStored(origin string, bytes int64) {
	uploadsStoredTotal.WithLabelValues(norm(origin)).Inc()
	uploadBytesTotal.WithLabelValues(norm(origin)).Add(float64(bytes))
}

func IncDownload() { downloadsTotal.Inc() }
