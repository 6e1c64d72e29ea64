package domain

// ServiceHealth is one dependency's health check line.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus is the /healthz response body.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// PipelineMetrics is the JSON snapshot served by GET /v1/metrics/pipeline.
type PipelineMetrics struct {
	DatasetsIngested   int64   `json:"datasets_ingested"`
	RowsIngested       int64   `json:"rows_ingested"`
	AnalysesCompleted  int64   `json:"analyses_completed"`
	AnalysesFailed     int64   `json:"analyses_failed"`
	BundleQueries      int64   `json:"bundle_queries"`
	NotificationsSent  int64   `json:"notifications_sent"`
	NotificationErrors int64   `json:"notification_errors"`
	ErrorRate          float64 `json:"error_rate"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
}
