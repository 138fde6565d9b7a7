package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecs_mentoring"

var (
	// HTTPRequestsTotal 按方法、路由模板、状态码统计请求数
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP 请求总数",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration 请求耗时分布
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时（秒）",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsWritten 成功写入的通知条数，按通知类型区分
	NotificationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_written_total",
		Help:      "批量写入成功的通知条数",
	}, []string{"type"})

	// NotificationBatchFailures 写入失败被跳过的批次数
	NotificationBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_batch_failures_total",
		Help:      "写入失败并被跳过的通知批次数",
	})

	// ConversationsCreated 新建会话数；race 标签区分是否因并发创建冲突而复用已有会话
	ConversationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversations_created_total",
		Help:      "会话创建次数",
	}, []string{"race"})

	// ContactDenials 因关系规则被拒绝的建会话请求数
	ContactDenials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_denials_total",
		Help:      "关系规则拒绝的会话创建请求数",
	})
)
