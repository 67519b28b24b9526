// Package events publishes signup lifecycle events to Kafka so downstream
// consumers (regional launch planning, notification fan-out) see waitlist
// growth without polling the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"basketwise/internal/signup/models"
)

// TopicSignupRegistered carries one record per accepted waitlist signup,
// keyed by region so per-region consumers stay ordered.
const TopicSignupRegistered = "signup.registered"

// Publisher is the signup event sink. Publishing is best-effort: a failed
// publish is logged, never surfaced to the signup flow.
type Publisher interface {
	PublishSignup(ctx context.Context, signup *models.Signup) error
	Close()
}

// signupEvent is the wire shape on TopicSignupRegistered.
type signupEvent struct {
	SignupID  string    `json:"signup_id"`
	RegionID  string    `json:"region_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Kafka publishes signup events with franz-go.
type Kafka struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafka connects to the brokers and ensures the topic exists.
func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, TopicSignupRegistered); err != nil {
		// Already-exists is the steady state; anything else still lets the
		// producer run against an auto-creating cluster.
		logger.Debug("create signup topic", "topic", TopicSignupRegistered, "error", err.Error())
	}

	return &Kafka{client: client, logger: logger}, nil
}

// PublishSignup produces one record, keyed by region.
func (k *Kafka) PublishSignup(ctx context.Context, signup *models.Signup) error {
	payload, err := json.Marshal(signupEvent{
		SignupID:  signup.ID.String(),
		RegionID:  signup.RegionID.String(),
		Email:     signup.Email,
		CreatedAt: signup.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal signup event: %w", err)
	}

	record := &kgo.Record{
		Topic: TopicSignupRegistered,
		Key:   []byte(signup.RegionID.String()),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce signup event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() {
	k.client.Close()
}

// Noop is the publisher used when no brokers are configured.
type Noop struct{}

func (Noop) PublishSignup(context.Context, *models.Signup) error { return nil }
func (Noop) Close()                                              {}
