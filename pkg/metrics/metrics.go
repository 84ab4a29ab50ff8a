// Package metrics 定义版本服务的 Prometheus 指标
// Package metrics defines the Prometheus metrics of the version service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ukhvat"
const subsystem = "version"

var (
	// VersionsCreated 按创建原因统计的版本创建数
	// VersionsCreated counts created versions by reason
	VersionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "created_total",
		Help:      "Number of versions created, labelled by creation reason.",
	}, []string{"reason"})

	// VersionsEvicted 因超出保留上限被删除的版本数
	// VersionsEvicted counts versions removed by the retention cap
	VersionsEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "evicted_total",
		Help:      "Number of versions evicted by the retention cap.",
	})

	// AutosaveSkipped 按原因统计的自动保存跳过数
	// AutosaveSkipped counts skipped autosaves by cause
	AutosaveSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "autosave_skipped_total",
		Help:      "Number of autosave attempts that did not produce a version, labelled by cause.",
	}, []string{"cause"})

	// DiffDuration 相邻版本差异计算耗时
	// DiffDuration observes neighbour diff computation time
	DiffDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "diff_duration_seconds",
		Help:      "Time spent computing a neighbour highlight diff.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// ArchiveExports 按存储方与结果统计的归档导出数
	// ArchiveExports counts archive exports by provider and status
	ArchiveExports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "archive_export_total",
		Help:      "Number of archive export uploads, labelled by provider and status.",
	}, []string{"provider", "status"})

	// ContentOffloads 卸载到文件存储的版本内容数
	// ContentOffloads counts version contents offloaded to file storage
	ContentOffloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "content_offload_total",
		Help:      "Number of version contents stored outside the database.",
	})
)

func init() {
	prometheus.MustRegister(
		VersionsCreated,
		VersionsEvicted,
		AutosaveSkipped,
		DiffDuration,
		ArchiveExports,
		ContentOffloads,
	)
}

// RegisterGaugeFunc 注册一个函数型 Gauge，用于暴露队列深度等运行时状态
// RegisterGaugeFunc registers a function gauge for runtime state such as queue depth
func RegisterGaugeFunc(name, help string, f func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, f))
}

// Handler 返回 Prometheus 抓取端点的 http.Handler
func Handler() http.Handler {
	return promhttp.Handler()
}
