package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fjod/go_storefront/internal/ledger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	Unpublished       []*ledger.PurchaseRecord
	GetErr            error
	MarkErr           error
	PublishedSessions []string
}

func (m *MockRepository) Close() error { return nil }

func (m *MockRepository) RunMigrations(*ledger.Credentials) error { return nil }

func (m *MockRepository) RecordPurchase(_ context.Context, rec *ledger.PurchaseRecord) error {
	m.Unpublished = append(m.Unpublished, rec)
	return nil
}

func (m *MockRepository) GetUnpublished(_ context.Context, _ int) ([]*ledger.PurchaseRecord, error) {
	return m.Unpublished, m.GetErr
}

func (m *MockRepository) MarkPublished(_ context.Context, sessionID string) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.PublishedSessions = append(m.PublishedSessions, sessionID)
	return nil
}

type FakeWriter struct {
	Messages []kafka.Message
	Err      error
	Closed   bool
}

func (w *FakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.Err != nil {
		return w.Err
	}
	w.Messages = append(w.Messages, msgs...)
	return nil
}

func (w *FakeWriter) Close() error {
	w.Closed = true
	return nil
}

func TestPublishPending_PublishesAndMarks(t *testing.T) {
	repo := &MockRepository{
		Unpublished: []*ledger.PurchaseRecord{
			{SessionID: "cs_1", UserID: 4, Username: "ana", Amount: 200, LeadIDs: []int64{1, 2}},
			{SessionID: "cs_2", Amount: 50, LeadIDs: []int64{9}},
		},
	}
	writer := &FakeWriter{}
	p := &OutboxPoller{repo: repo, writer: writer}

	p.publishPending(context.Background())

	require.Len(t, writer.Messages, 2)
	assert.Equal(t, []string{"cs_1", "cs_2"}, repo.PublishedSessions)

	assert.Equal(t, []byte("cs_1"), writer.Messages[0].Key)
	require.Len(t, writer.Messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.Messages[0].Headers[0].Key)
	assert.Equal(t, []byte("purchase-completed"), writer.Messages[0].Headers[0].Value)

	var event PurchaseEvent
	require.NoError(t, json.Unmarshal(writer.Messages[0].Value, &event))
	assert.Equal(t, "ana", event.Username)
	assert.Equal(t, []int64{1, 2}, event.LeadIDs)
	assert.Equal(t, float64(200), event.Amount)
}

func TestPublishPending_WriteErrorSkipsMark(t *testing.T) {
	repo := &MockRepository{
		Unpublished: []*ledger.PurchaseRecord{{SessionID: "cs_1", Amount: 10, LeadIDs: []int64{1}}},
	}
	writer := &FakeWriter{Err: errors.New("broker down")}
	p := &OutboxPoller{repo: repo, writer: writer}

	p.publishPending(context.Background())

	assert.Empty(t, repo.PublishedSessions, "failed publish must leave the row unpublished for retry")
}

func TestPublishPending_RepoErrorIsSwallowed(t *testing.T) {
	repo := &MockRepository{GetErr: errors.New("db gone")}
	writer := &FakeWriter{}
	p := &OutboxPoller{repo: repo, writer: writer}

	p.publishPending(context.Background())
	assert.Empty(t, writer.Messages)
}

func TestPublishPending_MarkErrorDoesNotStopBatch(t *testing.T) {
	repo := &MockRepository{
		Unpublished: []*ledger.PurchaseRecord{
			{SessionID: "cs_1", Amount: 10, LeadIDs: []int64{1}},
			{SessionID: "cs_2", Amount: 20, LeadIDs: []int64{2}},
		},
		MarkErr: errors.New("update failed"),
	}
	writer := &FakeWriter{}
	p := &OutboxPoller{repo: repo, writer: writer}

	p.publishPending(context.Background())
	assert.Len(t, writer.Messages, 2)
}

func TestClose(t *testing.T) {
	writer := &FakeWriter{}
	p := &OutboxPoller{repo: &MockRepository{}, writer: writer}
	p.Close()
	assert.True(t, writer.Closed)
}
