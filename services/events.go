package services

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventArtworkCreated = "artwork.created"
	EventArtworkLiked   = "artwork.liked"
	EventArtworkDeleted = "artwork.deleted"
)

// Event 作品相关事件
type Event struct {
	Type      string    `json:"type"`
	ArtworkID uint      `json:"artwork_id"`
	Likes     int       `json:"likes,omitempty"`
	Source    string    `json:"source,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher 事件发布，失败不影响主流程
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NoopPublisher 未配置 RabbitMQ 时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// RabbitPublisher 发布到默认交换机上的队列
type RabbitPublisher struct {
	ch    *amqp.Channel
	queue string
}

func NewRabbitPublisher(ch *amqp.Channel, queue string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, queue: queue}
}

func (p *RabbitPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.At,
		Type:         evt.Type,
		Body:         body,
	})
}
