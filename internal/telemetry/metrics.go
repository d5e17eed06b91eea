package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksTotal — обработанные сообщения по задаче и исходу.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "celery_worker_tasks_total",
		Help: "Task deliveries handled, by task name and outcome",
	}, []string{"task", "outcome"})

	// TaskDuration — длительность обработки сообщения.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "celery_worker_task_duration_seconds",
		Help:    "Time from gate acquisition to acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	// BackendErrors — ошибки отправки результата в backend.
	BackendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "celery_worker_backend_errors_total",
		Help: "Result backend report failures",
	})

	// SettleErrors — ошибки ack/reject.
	SettleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "celery_worker_settle_errors_total",
		Help: "Failures to acknowledge or reject a delivery",
	})

	// BusySlots — слоты, выполняющие задачу в данный момент.
	BusySlots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "celery_worker_busy_slots",
		Help: "Worker slots currently holding their gate",
	})
)
