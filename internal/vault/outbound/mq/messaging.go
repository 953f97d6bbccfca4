package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/credvault/internal/pkg/instrument"
	"github.com/shandysiswandi/credvault/internal/pkg/messaging"
	"github.com/shandysiswandi/credvault/internal/vault/entity"
	"go.opentelemetry.io/otel/codes"
)

const (
	keyOfCorrelationID string = "cID"
	keyOfEventID       string = "eID"
	keyOfAction        string = "action"

	defaultMaxRetries = 5
)

type Messaging struct {
	client     messaging.Publisher
	ins        instrument.Instrumentation
	topic      string
	maxRetries uint64
}

// NewMessaging publishes audit events to topic, or entity.DefaultAuditTopic when empty.
func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, topic string) *Messaging {
	if topic == "" {
		topic = entity.DefaultAuditTopic
	}
	return &Messaging{client: client, ins: ins, topic: topic, maxRetries: defaultMaxRetries}
}

// PublishCredentialChange sends msg keyed by object ref so one object's
// events keep their order on brokers that partition.
func (m *Messaging) PublishCredentialChange(ctx context.Context, msg entity.ChangeMessage) error {
	ctx, span := m.ins.Tracer("vault.outbound.mq").Start(ctx, "PublishCredentialChange")
	defer span.End()

	body, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := msg.CorrelationID
	if cID == "" {
		cID = instrument.GetCorrelationID(ctx)
	}

	out := messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(msg.ObjectRef),
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(cID)},
			{Key: keyOfEventID, Value: []byte(msg.EventID)},
			{Key: keyOfAction, Value: []byte(msg.Action)},
		},
		OrderingKey: msg.ObjectRef,
	}

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithMaxRetries(m.maxRetries, b)
	b = retry.WithCappedDuration(5*time.Second, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		_, err := m.client.Publish(ctx, m.topic, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, messaging.ErrTopicRequired) || errors.Is(err, messaging.ErrUnsupported) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
