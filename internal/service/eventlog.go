package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"aquasim/internal/models"
	"aquasim/internal/store"
)

// EventLogService lists device events with normalized filters.
type EventLogService struct {
	events store.EventRepo
}

func NewEventLogService(events store.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// List returns events matching the filter in append order.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	typ := strings.TrimSpace(strings.ToUpper(f.Type))
	return s.events.List(ctx, from, to, typ)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
