package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const listKey = "\x00all"

// ScenarioRepository caches scenarios with TTL to avoid repeated DB hits.
type ScenarioRepository struct {
	loader app.ScenarioLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedScenario
	list  cachedList
}

type cachedScenario struct {
	scenario  domain.Scenario
	expiresAt time.Time
}

type cachedList struct {
	scenarios []domain.Scenario
	expiresAt time.Time
}

func NewScenarioRepository(loader app.ScenarioLoader, ttl time.Duration) *ScenarioRepository {
	return &ScenarioRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedScenario),
	}
}

func (r *ScenarioRepository) GetScenario(ctx context.Context, id string) (domain.Scenario, error) {
	if s, ok := r.cached(id); ok {
		return s, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		if s, ok := r.cached(id); ok {
			return s, nil
		}
		scenario, err := r.loader.LoadScenario(ctx, id)
		if err != nil {
			return domain.Scenario{}, err
		}
		r.mu.Lock()
		r.cache[id] = cachedScenario{scenario: scenario, expiresAt: r.clock().Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return scenario, nil
	})
	if err != nil {
		return domain.Scenario{}, err
	}
	return result.(domain.Scenario), nil
}

func (r *ScenarioRepository) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	r.mu.RLock()
	if r.list.expiresAt.After(r.clock()) {
		out := append([]domain.Scenario(nil), r.list.scenarios...)
		r.mu.RUnlock()
		return out, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		scenarios, err := r.loader.LoadScenarios(ctx)
		if err != nil {
			return nil, err
		}
		expires := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.list = cachedList{scenarios: scenarios, expiresAt: expires}
		for _, s := range scenarios {
			r.cache[s.ID] = cachedScenario{scenario: s, expiresAt: expires}
		}
		r.mu.Unlock()
		return scenarios, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Scenario(nil), result.([]domain.Scenario)...), nil
}

func (r *ScenarioRepository) cached(id string) (domain.Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[id]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Scenario{}, false
	}
	return entry.scenario, true
}

func (r *ScenarioRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

// StaticScenarioLoader serves a fixed, ordered set of scenarios (the built-in
// catalog, tests and demos).
type StaticScenarioLoader struct {
	order     []string
	scenarios map[string]domain.Scenario
}

func NewStaticScenarioLoader(scenarios []domain.Scenario) *StaticScenarioLoader {
	l := &StaticScenarioLoader{scenarios: make(map[string]domain.Scenario, len(scenarios))}
	for _, s := range scenarios {
		if _, dup := l.scenarios[s.ID]; !dup {
			l.order = append(l.order, s.ID)
		}
		l.scenarios[s.ID] = s
	}
	return l
}

func (l *StaticScenarioLoader) LoadScenario(_ context.Context, id string) (domain.Scenario, error) {
	if s, ok := l.scenarios[id]; ok {
		return s, nil
	}
	return domain.Scenario{}, domain.ErrScenarioNotFound
}

func (l *StaticScenarioLoader) LoadScenarios(_ context.Context) ([]domain.Scenario, error) {
	out := make([]domain.Scenario, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.scenarios[id])
	}
	return out, nil
}
