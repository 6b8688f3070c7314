package mqtt

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/jsondoc"
)

// Publisher is the publishing surface the status publisher needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// SnapshotSource provides the current connectivity state.
type SnapshotSource interface {
	Snapshot() connectivity.Snapshot
}

// Watcher registers for connectivity transitions.
type Watcher interface {
	Watch(fn connectivity.ChangeFunc) (cancel func())
}

// statusQueueSize bounds the transitions waiting to be published.
const statusQueueSize = 32

// CommandPublishStatus asks the device to republish its network snapshot.
const CommandPublishStatus = "publish_status"

// StatusPublisher mirrors the tracker onto the retained network topic.
//
// Publish failures are logged and dropped; the next transition or an
// explicit command republishes the current state.
type StatusPublisher struct {
	pub      Publisher
	clientID string
	qos      byte
	logger   Logger
	now      func() time.Time
}

// NewStatusPublisher creates a publisher for one device.
func NewStatusPublisher(pub Publisher, clientID string, qos byte, logger Logger) *StatusPublisher {
	return &StatusPublisher{
		pub:      pub,
		clientID: clientID,
		qos:      qos,
		logger:   logger,
		now:      time.Now,
	}
}

// Attach publishes every tracker transition from a worker goroutine, so a
// slow broker never holds up the tracker's writer. cancel waits for queued
// transitions to be published.
func (s *StatusPublisher) Attach(w Watcher) (cancel func()) {
	return connectivity.WatchBuffered(w, statusQueueSize, s.OnChange, s.dropped)
}

func (s *StatusPublisher) dropped(change connectivity.Change) {
	if s.logger != nil {
		s.logger.Warn("network status queue full, dropping transition",
			"signal", string(change.Signal),
		)
	}
}

// OnChange publishes the post-transition state.
func (s *StatusPublisher) OnChange(change connectivity.Change) {
	if err := s.publish(change.After, string(change.Signal), change.At); err != nil && s.logger != nil {
		s.logger.Warn("network status publish failed",
			"signal", string(change.Signal),
			"error", err,
		)
	}
}

// PublishSnapshot publishes the given state outside of a transition.
func (s *StatusPublisher) PublishSnapshot(snap connectivity.Snapshot) error {
	return s.publish(snap, "", s.now())
}

func (s *StatusPublisher) publish(snap connectivity.Snapshot, signal string, at time.Time) error {
	return s.pub.Publish(Topics{}.Network(s.clientID), NetworkPayload(s.clientID, snap, signal, at), s.qos, true)
}

// NetworkPayload renders a connectivity snapshot as compact JSON.
// An empty signal is omitted.
func NetworkPayload(clientID string, snap connectivity.Snapshot, signal string, at time.Time) []byte {
	doc := jsondoc.NewObject()
	defer doc.Release()

	doc.SetString("client_id", clientID)
	doc.SetBool("ready", snap.Ready())
	doc.SetBool("link_connected", snap.LinkConnected)
	doc.SetBool("address_acquired", snap.AddressAcquired)
	if signal != "" {
		doc.SetString("signal", signal)
	}
	doc.SetString("timestamp", at.UTC().Format(time.RFC3339))
	return doc.PrintUnformatted()
}

// CommandHandler returns a MessageHandler for the device command topic.
//
// Supported payloads:
//
//	{"action":"publish_status"}
func (s *StatusPublisher) CommandHandler(src SnapshotSource) MessageHandler {
	return func(topic string, payload []byte) error {
		doc, err := jsondoc.Parse(payload)
		if err != nil {
			return fmt.Errorf("command on %s: %w", topic, err)
		}
		defer doc.Release()

		action, _ := doc.GetString("action")
		switch action {
		case CommandPublishStatus:
			return s.PublishSnapshot(src.Snapshot())
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCommand, action)
		}
	}
}
