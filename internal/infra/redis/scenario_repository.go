package redis

import (
	"context"
	"math/rand/v2"
	"time"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ScenarioRepository caches scenarios in Redis and falls back to a loader on cache miss.
// Scenarios are stored as JSON strings:
//
//	SET crisis:scenario:{id}  {scenario}
//	SET crisis:scenarios      [{scenario}, ...]
type ScenarioRepository struct {
	client *redis.Client
	loader app.ScenarioLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewScenarioRepository(client *redis.Client, loader app.ScenarioLoader, ttl time.Duration) *ScenarioRepository {
	return &ScenarioRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *ScenarioRepository) GetScenario(ctx context.Context, id string) (domain.Scenario, error) {
	var cached domain.Scenario
	if r.readCache(ctx, r.scenarioKey(id), &cached) {
		return cached, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached domain.Scenario
		if r.readCache(ctx, r.scenarioKey(id), &cached) {
			return cached, nil
		}
		scenario, err := r.loader.LoadScenario(ctx, id)
		if err != nil {
			return domain.Scenario{}, err
		}
		r.writeCache(ctx, r.scenarioKey(id), scenario)
		return scenario, nil
	})
	if err != nil {
		return domain.Scenario{}, err
	}
	return result.(domain.Scenario), nil
}

func (r *ScenarioRepository) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	var cached []domain.Scenario
	if r.readCache(ctx, r.listKey(), &cached) {
		return cached, nil
	}

	result, err, _ := r.sf.Do(r.listKey(), func() (interface{}, error) {
		scenarios, err := r.loader.LoadScenarios(ctx)
		if err != nil {
			return nil, err
		}
		r.writeCache(ctx, r.listKey(), scenarios)
		for _, s := range scenarios {
			r.writeCache(ctx, r.scenarioKey(s.ID), s)
		}
		return scenarios, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Scenario(nil), result.([]domain.Scenario)...), nil
}

// readCache treats any Redis or decode failure as a miss.
func (r *ScenarioRepository) readCache(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// writeCache is best effort; the loader stays authoritative.
func (r *ScenarioRepository) writeCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
}

func (r *ScenarioRepository) scenarioKey(id string) string {
	return "crisis:scenario:" + id
}

func (r *ScenarioRepository) listKey() string {
	return "crisis:scenarios"
}

func (r *ScenarioRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int64N(jitterMax+1))
}
