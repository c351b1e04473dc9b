package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"aquasim/internal/logger"
	"aquasim/internal/metrics"
	"aquasim/internal/models"
	"aquasim/internal/store"
)

// ResponsePublisher delivers command responses to the device response topic.
type ResponsePublisher interface {
	PublishResponse(resp models.CommandResponse) error
}

// DefaultSettleDelay is how long the simulated device takes to physically
// change over between filtration modes.
const DefaultSettleDelay = 2 * time.Second

// CommandService validates inbound commands and applies mode switches to
// the filtration process. One command is handled at a time, so the
// processing/success responses of a command are never interleaved with
// responses of another.
type CommandService struct {
	mu        sync.Mutex
	proc      *FiltrationService
	events    store.EventRepo
	responses ResponsePublisher
	settle    time.Duration
	log       *logger.Logger
}

func NewCommandService(proc *FiltrationService, events store.EventRepo, responses ResponsePublisher, settle time.Duration, log *logger.Logger) *CommandService {
	return &CommandService{
		proc:      proc,
		events:    events,
		responses: responses,
		settle:    settle,
		log:       log,
	}
}

// HandleRaw decodes one inbound command payload. Malformed payloads are
// dropped without a response: the sender cannot be identified reliably
// enough to answer, and it has its own timeout.
func (s *CommandService) HandleRaw(ctx context.Context, payload []byte) {
	var msg models.CommandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		metrics.CommandsHandled.WithLabelValues("dropped").Inc()
		s.log.Infow("dropping malformed command payload", "err", err)
		return
	}
	if msg.Command == "" {
		metrics.CommandsHandled.WithLabelValues("dropped").Inc()
		s.log.Infow("dropping command payload without command field")
		return
	}
	if err := s.Handle(ctx, msg); err != nil {
		s.log.Errorw("command handling failed", "command", msg.Command, "err", err)
	}
}

// Handle applies one decoded command, publishing responses as the switch
// progresses. Unknown command kinds fall through silently; the command
// topic is shared with future command types.
func (s *CommandService) Handle(ctx context.Context, msg models.CommandMessage) error {
	if msg.Command != models.CommandSetFilterMode {
		metrics.CommandsHandled.WithLabelValues("dropped").Inc()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mode := models.FilterMode(msg.Mode)
	if !mode.Valid() {
		metrics.CommandsHandled.WithLabelValues(models.StatusError).Inc()
		s.log.Infow("rejecting invalid filter mode", "mode", msg.Mode)
		return s.respond(msg.Command, models.StatusError, fmt.Sprintf("Invalid mode: %s", msg.Mode))
	}

	prev := s.proc.Snapshot().Mode
	s.log.Infow("switching filter mode", "from", prev, "to", mode)
	if err := s.respond(msg.Command, models.StatusProcessing, fmt.Sprintf("Switching to %s mode", mode)); err != nil {
		return err
	}

	// Settle window: the device takes time to change over. The wait holds
	// only the command lock, never the state lock, so ticks keep reading
	// the consistent pre-switch state.
	if err := s.waitSettle(ctx); err != nil {
		return err
	}

	s.proc.Start(ctx, mode, 0)
	_ = s.events.Append(ctx, models.DeviceEvent{
		Type:        models.EventModeChange,
		Description: "Filter mode changed to " + string(mode),
		Metadata:    map[string]any{"from": string(prev), "to": string(mode)},
	})

	metrics.CommandsHandled.WithLabelValues(models.StatusSuccess).Inc()
	return s.respond(msg.Command, models.StatusSuccess, fmt.Sprintf("Successfully switched to %s mode", mode))
}

func (s *CommandService) waitSettle(ctx context.Context) error {
	if s.settle <= 0 {
		return nil
	}
	t := time.NewTimer(s.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *CommandService) respond(command, status, message string) error {
	return s.responses.PublishResponse(models.CommandResponse{
		Command:   command,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
