package publisher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	Topic                  = "checkout-outbox"
	EventOrderCompleted    = "OrderCompleted"
	defaultBatch           = 100
	defaultShutdownTimeout = 5 * time.Second
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxEvent struct {
	ID          int
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type orderCompletedPayload struct {
	OrderID       string                `json:"order_id"`
	TransactionID string                `json:"transaction_id"`
	PaymentMethod domain.PaymentMethod  `json:"payment_method"`
	Items         []domain.CartLineItem `json:"items"`
	ProductCost   decimal.Decimal       `json:"product_cost"`
	VAT           decimal.Decimal       `json:"vat"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Province      string                `json:"province,omitempty"`
	CompletedAt   time.Time             `json:"completed_at"`
}

// Outbox buffers completed-order events and publishes them on every tick.
// An event stays pending until the writer accepted it.
type Outbox struct {
	writer    MessageWriter
	eventTick time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending []*OutboxEvent
	nextID  int
}

func NewOutbox(writer MessageWriter, eventTick time.Duration) *Outbox {
	if eventTick <= 0 {
		eventTick = time.Second
	}
	return &Outbox{writer: writer, eventTick: eventTick, now: time.Now}
}

// NewKafkaWriter returns the writer for the checkout-outbox topic.
func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
}

func (o *Outbox) Enqueue(_ context.Context, event domain.OrderCompleted) error {
	p := orderCompletedPayload{
		OrderID:       event.OrderID,
		TransactionID: event.TransactionID,
		PaymentMethod: event.PaymentMethod,
		Items:         event.Items,
		ProductCost:   event.Order.ProductCost,
		VAT:           event.Order.VAT,
		TotalAmount:   event.Order.TotalAmount,
		CompletedAt:   o.now(),
	}
	if event.Order.DeliveryInfo != nil {
		p.Province = event.Order.DeliveryInfo.Province
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal order completed payload")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	o.pending = append(o.pending, &OutboxEvent{
		ID:          o.nextID,
		AggregateID: event.OrderID,
		EventType:   EventOrderCompleted,
		Payload:     payload,
		CreatedAt:   o.now(),
	})
	return nil
}

func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Run publishes on every tick until ctx is done, then makes one last attempt.
func (o *Outbox) Run(ctx context.Context) {
	eventTicker := time.NewTicker(o.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			o.Flush(ctx)
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			o.Flush(final)
			cancel()
			if n := o.Pending(); n > 0 {
				log.Warnf("outbox stopped with %d unpublished events", n)
			}
			return
		}
	}
}

// Flush publishes pending events in order and returns how many were published.
// It stops at the first failure so the ordering per order id is kept.
func (o *Outbox) Flush(ctx context.Context) int {
	o.mu.Lock()
	batch := o.pending
	if len(batch) > defaultBatch {
		batch = batch[:defaultBatch]
	}
	batch = append([]*OutboxEvent(nil), batch...)
	o.mu.Unlock()

	published := 0
	for _, event := range batch {
		if err := o.publish(ctx, event); err != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, err)
			break
		}
		published++
	}
	if published == 0 {
		return 0
	}

	o.mu.Lock()
	o.pending = o.pending[published:]
	o.mu.Unlock()
	return published
}

func (o *Outbox) publish(ctx context.Context, event *OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return o.writer.WriteMessages(ctx, msg)
}

// LogWriter stands in for Kafka when no broker is configured.
type LogWriter struct{}

func (LogWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		eventType := ""
		for _, h := range m.Headers {
			if h.Key == "event_type" {
				eventType = string(h.Value)
			}
		}
		log.WithFields(log.Fields{
			"key":        string(m.Key),
			"event_type": eventType,
		}).Info(string(m.Value))
	}
	return nil
}
