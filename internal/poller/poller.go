package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/fjod/go_storefront/internal/publisher"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/segmentio/kafka-go"
)

// Poller consumes purchase-completed events and keeps the per-user
// purchased-incidents set current, so the storefront can badge already
// owned reports without a backend round trip.
type Poller struct {
	store  store.Store
	reader *kafka.Reader
}

func NewPoller(s store.Store, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "storefront-gateway",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{store: s, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.processMessage(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (p *Poller) processMessage(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	if err := p.apply(ctx, m.Value); err != nil {
		log.Printf("error applying purchase event: %v", err)
	}
}

// apply folds one event into the store. Guest purchases carry no username
// and have no owned-set to update.
func (p *Poller) apply(ctx context.Context, value []byte) error {
	var event publisher.PurchaseEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	if event.Username == "" {
		return nil
	}
	return store.AddPurchasedIncidents(ctx, p.store, event.Username, event.LeadIDs)
}
