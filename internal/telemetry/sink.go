package telemetry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// headline events are logged at info level, the rest at debug.
var headline = map[rules.EventType]bool{
	rules.EventGameStarted:       true,
	rules.EventPropertyPurchased: true,
	rules.EventPlayerBankrupt:    true,
	rules.EventSentToJail:        true,
	rules.EventTradeAccepted:     true,
	rules.EventGameOver:          true,
}

// LogSink returns a listener that writes every event to logger.
func LogSink(logger *zap.Logger, money Money) rules.Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(evt rules.Event) {
		fields := []zap.Field{
			zap.String("event", string(evt.Type)),
			zap.String("game_id", evt.GameID),
		}
		if evt.PlayerID != "" {
			fields = append(fields, zap.String("player", evt.PlayerID))
		}
		if evt.TargetID != "" {
			fields = append(fields, zap.String("target", evt.TargetID))
		}
		if IsMoney(evt.Type) {
			fields = append(fields, zap.String("amount", money.Format(evt.Amount)))
		} else if evt.Amount != 0 {
			fields = append(fields, zap.Int("value", evt.Amount))
		}
		if len(evt.Metadata) > 0 {
			fields = append(fields, zap.Any("metadata", evt.Metadata))
		}

		if headline[evt.Type] {
			logger.Info(evt.Description, fields...)
		} else {
			logger.Debug(evt.Description, fields...)
		}
	}
}

// Recorder keeps every event it sees in memory.
type Recorder struct {
	mu     sync.Mutex
	events []rules.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends evt. It has the shape of a rules.Listener.
func (r *Recorder) Record(evt rules.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []rules.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rules.Event(nil), r.events...)
}

// OfType returns the recorded events of type t in order.
func (r *Recorder) OfType(t rules.EventType) []rules.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rules.Event
	for _, evt := range r.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

// Counts tallies the recorded events by type.
func (r *Recorder) Counts() map[rules.EventType]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[rules.EventType]int)
	for _, evt := range r.events {
		counts[evt.Type]++
	}
	return counts
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
