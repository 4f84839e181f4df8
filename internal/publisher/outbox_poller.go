package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/ledger"
	"github.com/segmentio/kafka-go"
)

const Topic = "purchase-events"

// PurchaseEvent is the payload downstream consumers see (zone notifier,
// analytics, the storefront's own purchased-incidents poller).
type PurchaseEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Amount      float64   `json:"amount"`
	LeadIDs     []int64   `json:"lead_ids"`
	CompletedAt time.Time `json:"completed_at"`
}

// messageWriter is the kafka seam; *kafka.Writer satisfies it.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OutboxPoller struct {
	tick   time.Duration
	repo   ledger.RepoInterface
	writer messageWriter
}

func NewOutboxPoller(repo ledger.RepoInterface, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{tick: time.Second, repo: repo, writer: w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}

func (p *OutboxPoller) publishPending(ctx context.Context) {
	records, err := p.repo.GetUnpublished(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch unpublished purchases: %v", err)
		return
	}

	for _, rec := range records {
		if errPublish := p.publish(ctx, rec); errPublish != nil {
			log.Printf("failed to publish purchase %v: %v", rec.SessionID, errPublish)
			continue
		}

		if errMark := p.repo.MarkPublished(ctx, rec.SessionID); errMark != nil {
			log.Printf("failed to mark purchase %v as published: %v", rec.SessionID, errMark)
			continue
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, rec *ledger.PurchaseRecord) error {
	event := PurchaseEvent{
		SessionID:   rec.SessionID,
		UserID:      rec.UserID,
		Username:    rec.Username,
		Amount:      rec.Amount,
		LeadIDs:     rec.LeadIDs,
		CompletedAt: rec.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(rec.SessionID), // session id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("purchase-completed")},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
