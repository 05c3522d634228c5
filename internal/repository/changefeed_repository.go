package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/models"
)

// ChangeFeedRepository relays collection change events between API instances over Redis pub/sub.
type ChangeFeedRepository struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewChangeFeedRepository creates a feed on the namespace's channel. A nil client makes it local-only.
func NewChangeFeedRepository(client *redis.Client, namespace string, logger *zap.Logger) *ChangeFeedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeedRepository{client: client, channel: namespace + ":changes", logger: logger}
}

// Publish announces a change to every instance.
func (r *ChangeFeedRepository) Publish(ctx context.Context, event models.ChangeEvent) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Listen delivers change events to handle until ctx is cancelled.
func (r *ChangeFeedRepository) Listen(ctx context.Context, handle func(models.ChangeEvent)) error {
	if r.client == nil {
		<-ctx.Done()
		return nil
	}

	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn("discarding malformed change event", zap.String("channel", r.channel), zap.Error(err))
				continue
			}
			handle(event)
		}
	}
}
