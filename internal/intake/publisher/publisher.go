package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/arbaminim/order-intake/internal/intake/domain"
)

// OrderAcceptedEvent is published for every appended order so fulfillment
// tooling can follow the queue instead of polling the table.
type OrderAcceptedEvent struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	TotalPrice  string `json:"total_price"`
	TotalItems  string `json:"total_items"`
	Shipping    string `json:"needs_shipping"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-intake",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) PublishAccepted(ctx context.Context, order *domain.Order) error {
	event := OrderAcceptedEvent{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		FullName:    order.FullName,
		Phone:       order.Phone,
		City:        order.City,
		TotalPrice:  order.TotalPrice,
		TotalItems:  order.TotalItems,
		Shipping:    order.NeedsShipping,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_accepted")},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
