// Package notify keeps the per-user notification inbox.
package notify

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"taskboard/internal/events"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// EventNotification is the bus event published for every new notification.
const EventNotification = "notification"

// Inbox records notifications and persists them after every change.
type Inbox struct {
	mu     sync.Mutex
	items  []models.Notification
	kv     storage.KV
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time
	newID  func(prefix string) string
}

// NewInbox creates an empty inbox backed by kv. bus and logger may be nil.
func NewInbox(kv storage.KV, bus *events.Bus, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Inbox{kv: kv, bus: bus, logger: logger, now: time.Now, newID: models.NewID}
}

// WithClock replaces the inbox time source.
func (in *Inbox) WithClock(now func() time.Time) *Inbox {
	in.now = now
	return in
}

// Load restores persisted notifications. A malformed document is logged and ignored.
func (in *Inbox) Load(ctx context.Context) {
	if in.kv == nil {
		return
	}
	var saved []models.Notification
	if _, err := storage.LoadJSON(ctx, in.kv, storage.KeyNotifications, &saved); err != nil {
		in.logger.Warn("failed to load notifications", slog.String("error", err.Error()))
		return
	}
	in.mu.Lock()
	in.items = saved
	in.mu.Unlock()
}

// Add appends a notification for recipientID.
func (in *Inbox) Add(ctx context.Context, recipientID, actorID, resourceID string, resourceType models.ResourceType, action models.Action, message string) {
	n := models.Notification{
		ID:           in.newID(models.PrefixNotification),
		RecipientID:  recipientID,
		ActorID:      actorID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       action,
		Message:      message,
		CreatedAt:    in.now(),
	}

	in.mu.Lock()
	in.items = append([]models.Notification{n}, in.items...)
	in.persistLocked(ctx)
	in.mu.Unlock()

	metrics.NotificationsEmitted.WithLabelValues(string(action)).Inc()
	in.logger.Debug("notification added",
		slog.String("recipient", recipientID),
		slog.String("action", string(action)),
		slog.String("resource", resourceID),
	)
	in.bus.Publish(events.Event{Type: EventNotification, At: n.CreatedAt, Payload: n})
}

// ForUser returns the notifications addressed to userID, newest first.
func (in *Inbox) ForUser(userID string) []models.Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := []models.Notification{}
	for _, n := range in.items {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UnreadCount returns how many of userID's notifications are unread.
func (in *Inbox) UnreadCount(userID string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	count := 0
	for _, n := range in.items {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read.
func (in *Inbox) MarkRead(ctx context.Context, id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].ID == id {
			in.items[i].IsRead = true
			in.persistLocked(ctx)
			return
		}
	}
}

// MarkAllRead flags every notification of userID as read.
func (in *Inbox) MarkAllRead(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].RecipientID == userID {
			in.items[i].IsRead = true
		}
	}
	in.persistLocked(ctx)
}

// Delete removes a notification.
func (in *Inbox) Delete(ctx context.Context, id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	kept := in.items[:0:0]
	for _, n := range in.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(in.items) {
		return
	}
	in.items = kept
	in.persistLocked(ctx)
}

// persistLocked writes the inbox. Failures are logged and counted only.
func (in *Inbox) persistLocked(ctx context.Context) {
	if in.kv == nil {
		return
	}
	if err := storage.SaveJSON(ctx, in.kv, storage.KeyNotifications, in.items); err != nil {
		metrics.PersistFailures.WithLabelValues(storage.KeyNotifications).Inc()
		in.logger.Warn("failed to persist notifications", slog.String("error", err.Error()))
	}
}
