package postgres

import (
	"context"
	"errors"
	"fmt"

	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScenarioLoader loads scenario JSONB from Postgres.
type ScenarioLoader struct {
	pool *pgxpool.Pool
}

func NewScenarioLoader(pool *pgxpool.Pool) *ScenarioLoader {
	return &ScenarioLoader{pool: pool}
}

func (l *ScenarioLoader) LoadScenario(ctx context.Context, id string) (domain.Scenario, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM scenarios WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Scenario{}, domain.ErrScenarioNotFound
	}
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("load scenario: %w", err)
	}
	return decodeScenario(id, raw)
}

func (l *ScenarioLoader) LoadScenarios(ctx context.Context) ([]domain.Scenario, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, data FROM scenarios ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []domain.Scenario{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		s, err := decodeScenario(id, raw)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

// SeedScenarios upserts scenarios by id, keeping their slice order for listing.
func SeedScenarios(ctx context.Context, pool *pgxpool.Pool, scenarios []domain.Scenario) error {
	batch := &pgx.Batch{}
	for i, s := range scenarios {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal scenario %s: %w", s.ID, err)
		}
		batch.Queue(`INSERT INTO scenarios (id, title, sort_order, data) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, sort_order=EXCLUDED.sort_order, data=EXCLUDED.data`,
			s.ID, s.Title, i, string(data))
	}
	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for _, s := range scenarios {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("seed scenario %s: %w", s.ID, err)
		}
	}
	return nil
}

func decodeScenario(id string, raw []byte) (domain.Scenario, error) {
	var s domain.Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Scenario{}, fmt.Errorf("unmarshal scenario: %w", err)
	}
	if s.ID == "" {
		s.ID = id
	}
	return s, nil
}
