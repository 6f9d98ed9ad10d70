package searchsync

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/sirupsen/logrus"
)

// Worker consumes search-index-sync messages published by the outbox
// dispatcher and applies them to the injected Index. Everything here is
// best-effort: a failing message is nacked for redelivery and logged, the
// entity save that produced it succeeded long ago.
type Worker struct {
	Index  Index
	Logger *logrus.Logger

	TopicName        string
	SubscriptionName string
}

func NewWorker(index Index, logger *logrus.Logger, topicName string) *Worker {
	subName := strings.TrimSpace(os.Getenv("SEARCH_INDEX_SUBSCRIPTION"))
	if subName == "" {
		subName = topicName + "-worker"
	}
	return &Worker{
		Index:            index,
		Logger:           logger,
		TopicName:        topicName,
		SubscriptionName: subName,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return err
	}
	topic, err := config.CreateTopicIfNotExists(client, w.TopicName)
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, w.SubscriptionName, topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if err := w.handle(ctx, m.Data); err != nil {
			config.LogError(w.Logger, "worker.go", "Run", "handle search index message", string(m.Data), err)
			m.Nack()
			return
		}
		m.Ack()
	})
}

func (w *Worker) handle(ctx context.Context, data []byte) error {
	var msg models.SearchIndexMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}

	switch models.SearchAction(msg.Action) {
	case models.SearchActionDelete:
		return w.Index.Delete(ctx, msg.EntityType, msg.EntityId)
	default:
		for _, doc := range msg.Documents {
			if err := w.Index.Index(ctx, doc); err != nil {
				return err
			}
		}
	}
	return nil
}
