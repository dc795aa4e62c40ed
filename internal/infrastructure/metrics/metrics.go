package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry는 튜너 메트릭 전용 레지스트리입니다. 일회성 실행이므로 Go 런타임 수집기는 등록하지 않습니다.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// 지시 처리 관련 메트릭
	DirectivesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fasterdata_directives_total",
			Help: "Total number of tuning directives processed",
		},
		[]string{"scope", "outcome"}, // applied, no_op, planned, verify_mismatch, failed
	)

	DirectiveDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fasterdata_directive_duration_seconds",
			Help:    "Time spent reading, setting and confirming each directive",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"},
	)

	// 에러 메트릭
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fasterdata_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"error_type"}, // TOOL_NOT_FOUND, PERMISSION_DENIED, ...
	)

	// 실행 결과
	RunDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "fasterdata_run_duration_seconds",
			Help: "Duration of the last tuning run",
		},
	)

	RunExitCode = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "fasterdata_run_exit_code",
			Help: "Exit code of the last tuning run",
		},
	)

	RunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "fasterdata_run_last_timestamp_seconds",
			Help: "Unix time the last tuning run finished",
		},
	)

	SysctlPersisted = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "fasterdata_sysctl_persisted",
			Help: "Whether the managed sysctl block was written in the last run (1 = written)",
		},
	)

	// 시스템 정보
	TunerInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fasterdata_tuner_info",
			Help: "Tuner information",
		},
		[]string{"version", "os", "dry_run"},
	)
)

// RecordDirective는 지시 하나의 처리 결과와 시간을 기록합니다
func RecordDirective(scope, outcome string, duration float64) {
	DirectiveDuration.WithLabelValues(scope).Observe(duration)
	DirectivesProcessed.WithLabelValues(scope, outcome).Inc()
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordRun은 실행 종료 정보를 기록합니다
func RecordRun(exitCode int, duration time.Duration, finishedAt time.Time) {
	RunExitCode.Set(float64(exitCode))
	RunDuration.Set(duration.Seconds())
	RunTimestamp.Set(float64(finishedAt.Unix()))
}

// SetSysctlPersisted는 sysctl 파일 기록 여부를 설정합니다
func SetSysctlPersisted(written bool) {
	if written {
		SysctlPersisted.Set(1)
	} else {
		SysctlPersisted.Set(0)
	}
}

// SetTunerInfo는 튜너 정보를 설정합니다
func SetTunerInfo(version, osName string, dryRun bool) {
	mode := "false"
	if dryRun {
		mode = "true"
	}
	TunerInfo.WithLabelValues(version, osName, mode).Set(1)
}

// WriteTextfile은 node_exporter textfile collector 형식으로 메트릭을 기록합니다
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
