// Package metrics holds the Prometheus collectors of the board service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreMutations counts committed store operations by name.
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_store_mutations_total",
		Help: "Committed board mutations by operation.",
	}, []string{"op"})

	// PersistFailures counts failed state writes by key.
	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_persist_failures_total",
		Help: "Failed writes of persisted state by key.",
	}, []string{"key"})

	// DragCommits counts drag gestures by view and outcome.
	DragCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_drag_commits_total",
		Help: "Finished drag gestures by view and outcome.",
	}, []string{"view", "outcome"})

	// TasksMoved counts tasks moved by committed drags.
	TasksMoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskboard_tasks_moved_total",
		Help: "Tasks moved between columns by drag gestures.",
	})

	// NotificationsEmitted counts notifications by action.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_notifications_total",
		Help: "Notifications recorded by action.",
	}, []string{"action"})

	// Celebrations counts celebration triggers by kind.
	Celebrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskboard_celebrations_total",
		Help: "Celebration triggers by kind.",
	}, []string{"kind"})

	// EventSubscribers is the number of connected event stream clients.
	EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskboard_event_subscribers",
		Help: "Connected event stream clients.",
	})
)
