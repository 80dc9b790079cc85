package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/IBM/sarama"

	"clipbot/config"
	"clipbot/transcript"
	"clipbot/types"
)

// JobMessage is the payload other services publish to request a video.
type JobMessage struct {
	UUID     string `json:"uuid"`
	VideoURL string `json:"video_url"`
}

// Processor produces a finished video for one requested URL.
type Processor interface {
	ProcessURL(ctx context.Context, rawURL string) (*types.Artifact, error)
}

// Consumer pulls production jobs off a Kafka topic and feeds them to the
// pipeline one at a time.
type Consumer struct {
	group     sarama.ConsumerGroup
	processor Processor
	topic     string
	groupID   string
	ready     chan bool
}

// NewConsumer joins the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, processor Processor) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:     group,
		processor: processor,
		topic:     cfg.Topic,
		groupID:   cfg.GroupID,
		ready:     make(chan bool),
	}, nil
}

// Start begins consuming and returns once the group session is established.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{processor: c.processor, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Printf("[queue] Consumer context canceled")
					return
				}
				log.Printf("[queue] Consumer error: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("[queue] Consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("[queue] Consumer group error: %v", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	log.Printf("[queue] Closing consumer")
	return c.group.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	processor Processor
	ready     chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			log.Printf("[queue] Received job: partition=%d, offset=%d", message.Partition, message.Offset)

			if handleJob(session.Context(), h.processor, message.Value) {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleJob runs one job and reports whether the message should be marked.
// Malformed payloads and business skips are marked so they are never
// redelivered; transient failures are not, so another worker can retry.
func handleJob(ctx context.Context, processor Processor, payload []byte) bool {
	var job JobMessage
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Printf("[queue] Dropping malformed job payload: %v", err)
		return true
	}
	if job.VideoURL == "" {
		log.Printf("[queue] Dropping job %s with empty video_url", job.UUID)
		return true
	}

	artifact, err := processor.ProcessURL(ctx, job.VideoURL)
	if errors.Is(err, transcript.ErrNoTranscript) {
		log.Printf("[queue] Job %s: no transcript for %s, dropping", job.UUID, job.VideoURL)
		return true
	}
	if err != nil {
		log.Printf("[queue] Job %s failed, leaving for retry: %v", job.UUID, err)
		return false
	}

	log.Printf("[queue] Job %s complete: %s", job.UUID, artifact.VideoPath)
	return true
}
