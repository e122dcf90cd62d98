package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/event"
)

// Handler processes one decoded event. A returned error is logged; the
// message is committed either way so a poison event cannot wedge the group.
type Handler func(ctx context.Context, e event.Envelope) error

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Consumer reads one topic inside a consumer group and commits offsets only
// after the handler ran.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
	topic   string
}

func NewConsumer(brokers, groupID, topic string, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(brokers, ","),
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: reader, handler: handler, topic: topic}
}

// Run consumes until ctx is cancelled. Transport errors back off
// exponentially instead of spinning.
func (c *Consumer) Run(ctx context.Context) {
	logrus.Infof("[Queue] Consumer started: topic=%s", c.topic)
	backoff := initialBackoff

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logrus.Infof("[Queue] Consumer stopped: topic=%s", c.topic)
				return
			}
			logrus.Errorf("[Queue] Fetch FAILED: topic=%s err=%v retry_in=%v", c.topic, err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff

		envelope, err := event.Decode(msg.Value)
		if err != nil {
			// Undecodable payloads are committed and skipped.
			logrus.Warnf("[Queue] Skipping malformed event: topic=%s offset=%d err=%v", c.topic, msg.Offset, err)
		} else if err := c.handler(ctx, envelope); err != nil {
			logrus.Errorf("[Queue] Handler FAILED: topic=%s type=%s offset=%d err=%v",
				c.topic, envelope.Type(), msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.Errorf("[Queue] Commit FAILED: topic=%s offset=%d err=%v", c.topic, msg.Offset, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
