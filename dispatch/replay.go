package dispatch

import (
	"context"
	"fmt"

	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
	"github.com/kbukum/analyticskit/queue"
)

// replayQueued drains everything buffered for the instance and delivers it
// sequentially in enqueue order. The buffer is emptied exactly once; a
// second registration of the same identifier finds nothing to replay.
func (m *Manager) replayQueued(ctx context.Context, inst *Instance) {
	id := inst.Meta.ID
	events := m.events.Drain(id)
	if len(events) == 0 {
		return
	}
	m.metrics.RecordEnqueued(ctx, id, -int64(len(events)))

	if inst.State != StateActive {
		m.log.Warn("dropping buffered events for non-active provider", logger.Fields(
			logger.FieldProvider, id,
			logger.FieldState, inst.State.String(),
			logger.FieldQueueDepth, len(events),
		))
		return
	}

	for _, evt := range events {
		m.deliverQueued(ctx, inst, evt)
	}
	m.metrics.RecordReplay(ctx, id, int64(len(events)))
	m.log.Info("replayed buffered events", logger.Fields(
		logger.FieldProvider, id,
		logger.FieldReplayed, len(events),
	))
}

// deliverQueued decodes one buffered event and invokes the matching
// provider operation. Failures are logged per event and never abort the
// rest of the replay.
func (m *Manager) deliverQueued(ctx context.Context, inst *Instance, evt queue.Event) {
	var err error
	switch evt.Kind {
	case queue.KindTrack:
		p, ok := inst.Provider.(provider.AnalyticsProvider)
		if !ok {
			return
		}
		name, _ := evt.Payload["name"].(string)
		props, _ := evt.Payload["props"].(map[string]any)
		err = p.Track(ctx, name, props)
	case queue.KindIdentify:
		p, ok := inst.Provider.(provider.AnalyticsProvider)
		if !ok {
			return
		}
		userID, _ := evt.Payload["user_id"].(string)
		traits, _ := evt.Payload["traits"].(map[string]any)
		err = p.IdentifyUser(ctx, userID, traits)
	case queue.KindScreen:
		p, ok := inst.Provider.(provider.AnalyticsProvider)
		if !ok {
			return
		}
		name, _ := evt.Payload["name"].(string)
		props, _ := evt.Payload["props"].(map[string]any)
		err = p.LogScreenView(ctx, name, props)
	case queue.KindRevenue:
		p, ok := inst.Provider.(provider.AnalyticsProvider)
		if !ok {
			return
		}
		rev, _ := evt.Payload["revenue"].(provider.Revenue)
		err = p.LogRevenue(ctx, rev)
	case queue.KindError:
		p, ok := inst.Provider.(provider.ErrorProvider)
		if !ok {
			return
		}
		cause, _ := evt.Payload["error"].(error)
		errCtx, _ := evt.Payload["context"].(map[string]any)
		err = p.LogError(ctx, cause, errCtx)
	default:
		m.log.Warn("unknown buffered event kind", logger.Fields(
			logger.FieldProvider, inst.Meta.ID,
			"kind", string(evt.Kind),
		))
		return
	}

	if err != nil {
		m.log.Error("replay delivery failed", logger.Fields(
			logger.FieldProvider, inst.Meta.ID,
			"event_id", evt.ID,
			"kind", string(evt.Kind),
			logger.FieldError, fmt.Sprint(err),
		))
	}
}
