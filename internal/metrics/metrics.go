// Package metrics собирает Prometheus-метрики лидерборда и отдает их на /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector - интерфейс, через который сервисы сообщают о событиях
type MetricsCollector interface {
	RecordClaim(points int64)
	RecordClaimFailure(reason string)
	RecordUserAdded()
	RecordHistoryCleared(count int64)
	RecordCacheHit()
	RecordCacheMiss()
}

// Collector реализует MetricsCollector поверх Prometheus
type Collector struct {
	claims        prometheus.Counter
	claimFailures *prometheus.CounterVec
	pointsClaimed prometheus.Histogram
	usersAdded    prometheus.Counter
	historyClear  prometheus.Counter
	historyRemove prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewCollector создает Collector и регистрирует метрики в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_claims_total",
			Help: "Количество успешных начислений",
		}),
		claimFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_claim_failures_total",
			Help: "Количество неудачных начислений по причине",
		}, []string{"reason"}),
		pointsClaimed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_points_claimed",
			Help:    "Распределение начисленных очков",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		usersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_users_added_total",
			Help: "Количество зарегистрированных пользователей",
		}),
		historyClear: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_history_clears_total",
			Help: "Количество очисток журнала",
		}),
		historyRemove: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_history_records_removed_total",
			Help: "Количество удаленных записей журнала",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_cache_hits_total",
			Help: "Попадания в кеш лидерборда",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_cache_misses_total",
			Help: "Промахи кеша лидерборда",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_http_requests_total",
			Help: "HTTP запросы по маршруту и статусу",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leaderboard_http_request_duration_seconds",
			Help:    "Длительность обработки HTTP запросов",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.claims,
		c.claimFailures,
		c.pointsClaimed,
		c.usersAdded,
		c.historyClear,
		c.historyRemove,
		c.cacheHits,
		c.cacheMisses,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordClaim фиксирует успешное начисление
func (c *Collector) RecordClaim(points int64) {
	c.claims.Inc()
	c.pointsClaimed.Observe(float64(points))
}

// RecordClaimFailure фиксирует неудачное начисление
func (c *Collector) RecordClaimFailure(reason string) {
	c.claimFailures.WithLabelValues(reason).Inc()
}

// RecordUserAdded фиксирует регистрацию пользователя
func (c *Collector) RecordUserAdded() {
	c.usersAdded.Inc()
}

// RecordHistoryCleared фиксирует очистку журнала
func (c *Collector) RecordHistoryCleared(count int64) {
	c.historyClear.Inc()
	c.historyRemove.Add(float64(count))
}

func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// Middleware возвращает Gin middleware, считающий запросы и их длительность
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler возвращает HTTP обработчик для скрейпа Prometheus
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop - пустая реализация MetricsCollector для тестов и утилит
type Noop struct{}

func (Noop) RecordClaim(points int64)         {}
func (Noop) RecordClaimFailure(reason string) {}
func (Noop) RecordUserAdded()                 {}
func (Noop) RecordHistoryCleared(count int64) {}
func (Noop) RecordCacheHit()                  {}
func (Noop) RecordCacheMiss()                 {}
