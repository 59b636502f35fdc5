package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/messaging/kafka"
)

// errNotReplayable: сообщение не похоже на DLQ-запись outbox и пропускается.
var errNotReplayable = errors.New("message is not an outbox dlq record")

// dlqRecord — то, что outbox worker кладёт в payload DLQ-конверта.
type dlqRecord struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
}

type offsetClient interface {
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Partitions(topic string) ([]int32, error)
	Close() error
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionConsumerSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
	Close() error
}

// sender публикует восстановленное событие; им служит *kafka.Producer.
type sender interface {
	Send(msg kafka.Message) error
	Close() error
}

type saramaConsumerAdapter struct {
	consumer sarama.Consumer
}

func (a saramaConsumerAdapter) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	pc, err := a.consumer.ConsumePartition(topic, partition, offset)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

func (a saramaConsumerAdapter) Close() error {
	if a.consumer == nil {
		return nil
	}
	return a.consumer.Close()
}

type replayer struct {
	cfg      config
	client   offsetClient
	consumer partitionConsumerSource
	producer sender
	logger   *log.Entry
	now      func() time.Time
}

type replayStats struct {
	processed int
	replayed  int
	skipped   int
}

func (s *replayStats) add(other replayStats) {
	s.processed += other.processed
	s.replayed += other.replayed
	s.skipped += other.skipped
}

func (r *replayer) run(ctx context.Context) (replayStats, error) {
	var total replayStats

	if r.client == nil || r.consumer == nil {
		return total, errors.New("kafka client and consumer are required")
	}
	if r.cfg.execute && r.producer == nil {
		return total, errors.New("producer is required in execute mode")
	}

	partitions, err := r.client.Partitions(r.cfg.sourceTopic)
	if err != nil {
		return total, fmt.Errorf("get partitions for topic %s: %w", r.cfg.sourceTopic, err)
	}
	if len(partitions) == 0 {
		r.logger.WithField("topic", r.cfg.sourceTopic).Warn("source topic has no partitions")
		return total, nil
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	for _, partition := range partitions {
		if total.processed >= r.cfg.limit {
			break
		}
		stats, err := r.partition(ctx, partition, r.cfg.limit-total.processed)
		total.add(stats)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// partition читает диапазон [oldest, newest) одной партиции, не дольше idleTimeout без сообщений.
func (r *replayer) partition(ctx context.Context, partition int32, limit int) (replayStats, error) {
	var stats replayStats

	oldest, err := r.client.GetOffset(r.cfg.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return stats, fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	newest, err := r.client.GetOffset(r.cfg.sourceTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return stats, fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}
	if newest <= oldest {
		return stats, nil
	}

	start := oldest
	if r.cfg.fromNewest {
		start = max(newest-int64(limit), oldest)
	}

	pc, err := r.consumer.ConsumePartition(r.cfg.sourceTopic, partition, start)
	if err != nil {
		return stats, fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idle := time.NewTimer(r.cfg.idleTimeout)
	defer idle.Stop()

	for stats.processed < limit {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case cerr := <-pc.Errors():
			if cerr != nil {
				return stats, fmt.Errorf("partition %d consumer error: %w", partition, cerr)
			}
		case <-idle.C:
			return stats, nil
		case msg, ok := <-pc.Messages():
			if !ok || msg == nil || msg.Offset >= newest {
				return stats, nil
			}
			idle.Reset(r.cfg.idleTimeout)

			if err := r.handle(msg, &stats); err != nil {
				return stats, err
			}
			if msg.Offset+1 >= newest {
				return stats, nil
			}
		}
	}

	return stats, nil
}

func (r *replayer) handle(msg *sarama.ConsumerMessage, stats *replayStats) error {
	stats.processed++
	fields := log.Fields{"partition": msg.Partition, "offset": msg.Offset}

	out, err := extractReplayMessage(msg.Value, r.cfg.targetTopic, r.now())
	if err != nil {
		stats.skipped++
		r.logger.WithError(err).WithFields(fields).Warn("skip dlq message")
		return nil
	}

	if !r.cfg.execute {
		stats.replayed++
		r.logger.WithFields(fields).WithFields(log.Fields{
			"target_topic": out.Topic,
			"key":          out.Key,
			"event_type":   out.Headers[kafka.HeaderEventType],
		}).Info("dlq replay candidate")
		return nil
	}

	if err := r.producer.Send(out); err != nil {
		return fmt.Errorf("publish replay message: %w", err)
	}
	stats.replayed++
	return nil
}

// extractReplayMessage восстанавливает исходный конверт события из DLQ-записи.
func extractReplayMessage(value []byte, topic string, now time.Time) (kafka.Message, error) {
	var outer kafka.Envelope
	if err := json.Unmarshal(value, &outer); err != nil || len(outer.Payload) == 0 {
		return kafka.Message{}, errNotReplayable
	}

	var record dlqRecord
	if err := json.Unmarshal(outer.Payload, &record); err != nil {
		return kafka.Message{}, fmt.Errorf("decode dlq record: %w", err)
	}
	if len(record.Payload) == 0 || string(record.Payload) == "null" {
		return kafka.Message{}, errors.New("dlq record does not contain original event payload")
	}

	envelope := kafka.Envelope{
		ID:            firstNonEmpty(record.OutboxID, outer.ID),
		AggregateType: firstNonEmpty(record.AggregateType, outer.AggregateType),
		AggregateID:   firstNonEmpty(record.AggregateID, outer.AggregateID),
		EventType:     firstNonEmpty(record.EventType, outer.EventType),
		Payload:       record.Payload,
		PublishedAt:   now.UTC(),
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode replay envelope: %w", err)
	}

	return kafka.Message{
		Topic: topic,
		Key:   firstNonEmpty(envelope.AggregateID, envelope.ID),
		Value: encoded,
		Headers: map[string]string{
			kafka.HeaderEventType:     envelope.EventType,
			kafka.HeaderAggregateType: envelope.AggregateType,
			kafka.HeaderOutboxID:      envelope.ID,
		},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
