// Package redis provides Redis persistence for automations. Each automation is
// a JSON document under its own key and a sorted set indexes them by creation
// time.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
)

const (
	keyPrefix = "automation:"
	indexKey  = "automations"
)

// Persistence implements persistence.Persistence on top of a Redis client.
type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
	now    func() time.Time
}

// NewPersistence connects to the redis:// URL and verifies the connection.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	options, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return NewPersistenceWithClient(logger, client), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(logger *slog.Logger, client redis.UniversalClient) *Persistence {
	return &Persistence{
		client: client,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Automations returns every automation, newest first.
func (p *Persistence) Automations(ctx context.Context) ([]*models.Automation, error) {
	ids, err := p.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}

	automations := make([]*models.Automation, 0, len(ids))
	if len(ids) == 0 {
		return automations, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load automations: %w", err)
	}

	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			p.logger.WarnContext(ctx, "Indexed automation is missing", "automation_id", ids[i])

			continue
		}

		automation, err := decode(ids[i], data)
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	return automations, nil
}

func (p *Persistence) AutomationByID(ctx context.Context, id string) (*models.Automation, error) {
	data, err := p.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewAutomationError("GetByID", id, persistence.ErrAutomationNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}

	return decode(id, data)
}

func (p *Persistence) SaveAutomation(ctx context.Context, automation *models.Automation) error {
	err := persistence.PrepareForSave(automation, p.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(automation)
	if err != nil {
		return fmt.Errorf("failed to marshal automation: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+automation.ID, data, 0)
		pipe.ZAdd(ctx, indexKey, redis.Z{
			Score:  float64(automation.CreatedAt.UnixMilli()),
			Member: automation.ID,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save automation: %w", err)
	}

	return nil
}

func (p *Persistence) DeleteAutomation(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keyPrefix+id)
		pipe.ZRem(ctx, indexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete automation: %w", err)
	}

	if deleted.Val() == 0 {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	return nil
}

func decode(id, data string) (*models.Automation, error) {
	var automation models.Automation

	err := json.Unmarshal([]byte(data), &automation)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation %s: %w", id, err)
	}

	return &automation, nil
}
