package services

import "github.com/prometheus/client_golang/prometheus"

var (
	notificationsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pressroom_notifications_failed_total",
		Help: "Notifications that could not be stored",
	})
	commentsRateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pressroom_comments_rate_limited_total",
		Help: "Comment attempts rejected by the daily per-post limit",
	})
	moderationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_moderation_actions_total",
		Help: "Admin moderation actions applied",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(notificationsFailed, commentsRateLimited, moderationActions)
}
