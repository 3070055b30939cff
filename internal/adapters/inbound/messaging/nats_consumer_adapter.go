package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type jobEvent struct {
	VideoID string `json:"video_id"`
}

type NatsConsumerAdapter struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	ackWait time.Duration
	handler func(ctx context.Context, videoID string) error
}

// NewNatsConsumerAdapter subscribes the worker to job events. Processing a
// job can take minutes, so the ack wait covers the full job timeout;
// redeliveries of an in-flight job are harmless because the claim makes the
// duplicate a no-op.
func NewNatsConsumerAdapter(url, subject string, ackWait time.Duration, handler func(ctx context.Context, videoID string) error) (ports.EventConsumer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("error getting JetStream context: %w", err)
	}

	return &NatsConsumerAdapter{
		nc:      nc,
		js:      js,
		subject: subject,
		ackWait: ackWait,
		handler: handler,
	}, nil
}

func (a *NatsConsumerAdapter) Listen(ctx context.Context) error {
	log.Printf("👂 Listening for JetStream events on subject %q...", a.subject)

	sub, err := a.js.Subscribe(a.subject, func(m *nats.Msg) {
		var event jobEvent
		if err := json.Unmarshal(m.Data, &event); err != nil {
			log.Printf("❌ Error unmarshaling job event: %v", err)
			m.Term()
			return
		}

		log.Printf("📥 Received job event: video_id=%s", event.VideoID)

		// The handler blocks for the whole job; dispatch so the
		// subscription keeps draining. Actual concurrency is bounded
		// by the worker pool inside the handler.
		go func() {
			if err := a.handler(ctx, event.VideoID); err != nil {
				log.Printf("❌ Error handling job event: %v", err)
				if isPermanent(err) {
					// Redelivery can never succeed, drop the message
					// like a malformed payload.
					m.Term()
				} else {
					m.Nak()
				}
				return
			}
			m.Ack()
		}()
	}, nats.Durable("worker"), nats.ManualAck(), nats.AckWait(a.ackWait))

	if err != nil {
		return fmt.Errorf("error subscribing to NATS: %w", err)
	}

	log.Printf("✅ Subscribed to %s", sub.Subject)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		log.Printf("⚠️ Error draining subscription: %v", err)
	}
	return nil
}

func (a *NatsConsumerAdapter) Close() {
	a.nc.Close()
}

// isPermanent reports whether retrying the job event can never succeed.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
