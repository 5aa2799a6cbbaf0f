package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters exported on the metrics port
type Metrics struct {
	Requests        *prometheus.CounterVec
	FollowRequests  prometheus.Counter
	FollowAccepts   prometheus.Counter
	FollowRejects   prometheus.Counter
	Unfollows       prometheus.Counter
	MoodsCreated    prometheus.Counter
	CommentsCreated prometheus.Counter
	Signups         prometheus.Counter
	FailedSignins   prometheus.Counter
}

// New creates the counters and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route, method and status class",
			},
			[]string{"path", "method", "status"},
		),
		FollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "follow_requests_total",
			Help: "Total number of follow requests sent",
		}),
		FollowAccepts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "follow_accepts_total",
			Help: "Total number of follow requests accepted",
		}),
		FollowRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "follow_rejects_total",
			Help: "Total number of follow requests rejected",
		}),
		Unfollows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unfollows_total",
			Help: "Total number of unfollows",
		}),
		MoodsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mood_events_created_total",
			Help: "Total number of mood events created",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments and replies created",
		}),
		Signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of accounts created",
		}),
		FailedSignins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "failed_signins_total",
			Help: "Total number of rejected sign-in attempts",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.FollowRequests,
		m.FollowAccepts,
		m.FollowRejects,
		m.Unfollows,
		m.MoodsCreated,
		m.CommentsCreated,
		m.Signups,
		m.FailedSignins,
	)
	return m
}

// Middleware counts every response by route template and status class
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = 500
				}
			}
			m.Requests.WithLabelValues(c.Path(), c.Request().Method, strconv.Itoa(status/100)+"xx").Inc()
			return err
		}
	}
}
