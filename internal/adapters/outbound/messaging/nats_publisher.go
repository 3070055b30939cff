package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

const streamName = "TRANSCRIBE_JOBS"

type jobEvent struct {
	VideoID string `json:"video_id"`
}

type NatsPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NewNatsPublisher connects and makes sure the job stream exists.
func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("error getting JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("error creating stream: %w", err)
		}
	}

	return &NatsPublisher{nc: nc, js: js, subject: subject}, nil
}

func (p *NatsPublisher) PublishJob(ctx context.Context, videoID string) error {
	data, err := json.Marshal(jobEvent{VideoID: videoID})
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(p.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("error publishing job event: %w", err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	p.nc.Close()
}

var _ ports.EventPublisher = (*NatsPublisher)(nil)
