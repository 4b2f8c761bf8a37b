package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// messageWriter lo que el publisher usa de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher publica eventos de inventario en un tópico, con el id de la venta como key
// para conservar el orden por venta dentro de la partición.
type Publisher struct {
	w messageWriter
}

// NewPublisher construye el writer con balanceo por hash de key.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

type deductionPayload struct {
	StockID    string `json:"stock_id"`
	Ingredient string `json:"ingredient"`
	Deducted   string `json:"deducted"`
	Remaining  string `json:"remaining"`
}

type eventMessage struct {
	EventID    string             `json:"event_id"`
	EventType  string             `json:"event_type"`
	SaleID     string             `json:"sale_id"`
	Errors     []string           `json:"errors,omitempty"`
	Deductions []deductionPayload `json:"deductions"`
	Timestamp  time.Time          `json:"timestamp"`
}

func encode(ev inventory.InventoryEvent) ([]byte, error) {
	msg := eventMessage{
		EventID:    ev.EventID,
		EventType:  ev.EventType,
		SaleID:     ev.SaleID,
		Errors:     ev.Errors,
		Deductions: make([]deductionPayload, 0, len(ev.Deductions)),
		Timestamp:  ev.Timestamp,
	}
	for _, d := range ev.Deductions {
		msg.Deductions = append(msg.Deductions, deductionPayload{
			StockID:    d.StockRecordID,
			Ingredient: d.Ingredient,
			Deducted:   d.Deducted.String(),
			Remaining:  d.Remaining.String(),
		})
	}
	return json.Marshal(msg)
}

func (p *Publisher) Publish(ctx context.Context, ev inventory.InventoryEvent) error {
	value, err := encode(ev)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.SaleID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", ev.EventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
