package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// Ensure Postgres implements both contracts
var (
	_ Store        = (*Postgres)(nil)
	_ SyncLogStore = (*Postgres)(nil)
)

// Postgres is the canonical store and sync audit log backed by PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection, verifies it and ensures the schema.
func NewPostgres(cfg *config.PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &Postgres{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL canonical store initialized successfully")
	return s, nil
}

func (s *Postgres) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS leagues (
		id SERIAL PRIMARY KEY,
		external_id VARCHAR(200) NOT NULL,
		source VARCHAR(100) NOT NULL,
		name VARCHAR(300) NOT NULL,
		sport VARCHAR(50) NOT NULL,
		country VARCHAR(100) NOT NULL DEFAULT '',
		season VARCHAR(50) NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(external_id, source)
	);

	CREATE TABLE IF NOT EXISTS teams (
		id SERIAL PRIMARY KEY,
		external_id VARCHAR(200) NOT NULL,
		source VARCHAR(100) NOT NULL,
		name VARCHAR(300) NOT NULL,
		short_name VARCHAR(10) NOT NULL DEFAULT '',
		sport VARCHAR(50) NOT NULL,
		country VARCHAR(100) NOT NULL DEFAULT '',
		founded_year INT NOT NULL DEFAULT 0,
		primary_color VARCHAR(10) NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(external_id, source)
	);

	CREATE TABLE IF NOT EXISTS events (
		id SERIAL PRIMARY KEY,
		external_id VARCHAR(200) NOT NULL,
		source VARCHAR(100) NOT NULL,
		name VARCHAR(500) NOT NULL,
		sport VARCHAR(50) NOT NULL,
		league_id VARCHAR(200) NOT NULL DEFAULT '',
		home_team VARCHAR(300) NOT NULL,
		away_team VARCHAR(300) NOT NULL,
		start_time TIMESTAMP NOT NULL,
		timezone VARCHAR(50) NOT NULL DEFAULT 'UTC',
		status VARCHAR(30) NOT NULL,
		home_score INT,
		away_score INT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(external_id, source)
	);

	CREATE INDEX IF NOT EXISTS idx_events_sport_status ON events(sport, status);
	CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time);

	CREATE TABLE IF NOT EXISTS markets (
		id SERIAL PRIMARY KEY,
		source VARCHAR(100) NOT NULL,
		event_name VARCHAR(500) NOT NULL,
		market_type VARCHAR(50) NOT NULL,
		title VARCHAR(300) NOT NULL,
		question TEXT NOT NULL DEFAULT '',
		outcomes JSONB NOT NULL,
		outcome_prices JSONB NOT NULL,
		line DECIMAL(10, 2),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(source, event_name, title)
	);

	CREATE TABLE IF NOT EXISTS sync_logs (
		id UUID PRIMARY KEY,
		sync_type VARCHAR(30) NOT NULL,
		source VARCHAR(100) NOT NULL,
		sport VARCHAR(50) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		records_fetched INT NOT NULL DEFAULT 0,
		records_created INT NOT NULL DEFAULT 0,
		records_updated INT NOT NULL DEFAULT 0,
		records_failed INT NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMP
	);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// upsertBatch runs fn for every record inside one transaction and tallies
// created-vs-updated using the xmax = 0 trick.
func (s *Postgres) upsertBatch(ctx context.Context, n int, fn func(tx *sql.Tx, i int) (bool, error)) (UpsertResult, error) {
	var res UpsertResult
	if n == 0 {
		return res, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < n; i++ {
		inserted, err := fn(tx, i)
		if err != nil {
			return UpsertResult{}, err
		}
		if inserted {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to commit batch: %w", err)
	}
	return res, nil
}

func (s *Postgres) UpsertLeagues(ctx context.Context, leagues []models.League) (UpsertResult, error) {
	return s.upsertBatch(ctx, len(leagues), func(tx *sql.Tx, i int) (bool, error) {
		l := leagues[i]
		var inserted bool
		err := tx.QueryRowContext(ctx, `
			INSERT INTO leagues (external_id, source, name, sport, country, season, logo_url, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (external_id, source) DO UPDATE SET
				name = EXCLUDED.name,
				sport = EXCLUDED.sport,
				country = EXCLUDED.country,
				season = EXCLUDED.season,
				logo_url = EXCLUDED.logo_url,
				updated_at = NOW()
			RETURNING (xmax = 0)`,
			l.ExternalID, l.Source, l.Name, l.Sport.String(), l.Country, l.Season, l.LogoURL,
		).Scan(&inserted)
		if err != nil {
			return false, fmt.Errorf("failed to upsert league %s/%s: %w", l.Source, l.ExternalID, err)
		}
		return inserted, nil
	})
}

func (s *Postgres) UpsertTeams(ctx context.Context, teams []models.Team) (UpsertResult, error) {
	return s.upsertBatch(ctx, len(teams), func(tx *sql.Tx, i int) (bool, error) {
		t := teams[i]
		var inserted bool
		err := tx.QueryRowContext(ctx, `
			INSERT INTO teams (external_id, source, name, short_name, sport, country, founded_year, primary_color, logo_url, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (external_id, source) DO UPDATE SET
				name = EXCLUDED.name,
				short_name = EXCLUDED.short_name,
				sport = EXCLUDED.sport,
				country = EXCLUDED.country,
				founded_year = EXCLUDED.founded_year,
				primary_color = EXCLUDED.primary_color,
				logo_url = EXCLUDED.logo_url,
				updated_at = NOW()
			RETURNING (xmax = 0)`,
			t.ExternalID, t.Source, t.Name, t.ShortName, t.Sport.String(), t.Country, t.FoundedYear, t.PrimaryColor, t.LogoURL,
		).Scan(&inserted)
		if err != nil {
			return false, fmt.Errorf("failed to upsert team %s/%s: %w", t.Source, t.ExternalID, err)
		}
		return inserted, nil
	})
}

func (s *Postgres) UpsertEvents(ctx context.Context, events []models.Event) (UpsertResult, error) {
	return s.upsertBatch(ctx, len(events), func(tx *sql.Tx, i int) (bool, error) {
		e := events[i]
		var inserted bool
		err := tx.QueryRowContext(ctx, `
			INSERT INTO events (external_id, source, name, sport, league_id, home_team, away_team, start_time, timezone, status, home_score, away_score, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
			ON CONFLICT (external_id, source) DO UPDATE SET
				name = EXCLUDED.name,
				sport = EXCLUDED.sport,
				league_id = EXCLUDED.league_id,
				home_team = EXCLUDED.home_team,
				away_team = EXCLUDED.away_team,
				start_time = EXCLUDED.start_time,
				timezone = EXCLUDED.timezone,
				status = EXCLUDED.status,
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score,
				updated_at = NOW()
			RETURNING (xmax = 0)`,
			e.ExternalID, e.Source, e.Name, e.Sport.String(), e.LeagueID, e.HomeTeam, e.AwayTeam,
			e.StartTime, e.Timezone, e.Status.String(), nullableInt(e.HomeScore), nullableInt(e.AwayScore),
		).Scan(&inserted)
		if err != nil {
			return false, fmt.Errorf("failed to upsert event %s/%s: %w", e.Source, e.ExternalID, err)
		}
		return inserted, nil
	})
}

func (s *Postgres) UpsertMarkets(ctx context.Context, markets []models.ConvertedMarket) (UpsertResult, error) {
	return s.upsertBatch(ctx, len(markets), func(tx *sql.Tx, i int) (bool, error) {
		m := markets[i]
		outcomes, err := json.Marshal(m.Outcomes)
		if err != nil {
			return false, fmt.Errorf("failed to encode outcomes: %w", err)
		}
		prices, err := json.Marshal(m.OutcomePrices)
		if err != nil {
			return false, fmt.Errorf("failed to encode outcome prices: %w", err)
		}

		var inserted bool
		err = tx.QueryRowContext(ctx, `
			INSERT INTO markets (source, event_name, market_type, title, question, outcomes, outcome_prices, line, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (source, event_name, title) DO UPDATE SET
				market_type = EXCLUDED.market_type,
				question = EXCLUDED.question,
				outcomes = EXCLUDED.outcomes,
				outcome_prices = EXCLUDED.outcome_prices,
				line = EXCLUDED.line,
				updated_at = NOW()
			RETURNING (xmax = 0)`,
			m.Source, m.EventName, string(m.MarketType), m.Title, m.Question, outcomes, prices, nullableFloat(m.Line),
		).Scan(&inserted)
		if err != nil {
			return false, fmt.Errorf("failed to upsert market %q for %q: %w", m.Title, m.EventName, err)
		}
		return inserted, nil
	})
}

func (s *Postgres) Events(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `
		SELECT external_id, source, name, sport, league_id, home_team, away_team,
		       start_time, timezone, status, home_score, away_score, created_at, updated_at
		FROM events WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Sport != "" {
		query += " AND sport = " + arg(filter.Sport.String())
	}
	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status.String())
	}
	if filter.Source != "" {
		query += " AND source = " + arg(filter.Source)
	}
	if !filter.From.IsZero() {
		query += " AND start_time >= " + arg(filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND start_time <= " + arg(filter.To)
	}
	query += " ORDER BY start_time"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var sport, status string
		var homeScore, awayScore sql.NullInt64
		if err := rows.Scan(&e.ExternalID, &e.Source, &e.Name, &sport, &e.LeagueID,
			&e.HomeTeam, &e.AwayTeam, &e.StartTime, &e.Timezone, &status,
			&homeScore, &awayScore, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Sport = enums.Sport(sport)
		e.Status = enums.EventStatus(status)
		if homeScore.Valid {
			e.HomeScore = models.IntPtr(int(homeScore.Int64))
		}
		if awayScore.Valid {
			e.AwayScore = models.IntPtr(int(awayScore.Int64))
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Postgres) CreateSyncLog(ctx context.Context, syncType models.SyncType, source string, sport enums.Sport) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, sync_type, source, sport, status, started_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, string(syncType), source, sport.String(), string(models.SyncRunning))
	if err != nil {
		return "", fmt.Errorf("failed to create sync log: %w", err)
	}
	return id, nil
}

func (s *Postgres) UpdateSyncLog(ctx context.Context, id string, update SyncLogUpdate) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_logs SET
			status = $2,
			records_fetched = $3,
			records_created = $4,
			records_updated = $5,
			records_failed = $6,
			error_message = $7,
			duration_ms = $8,
			finished_at = NOW()
		WHERE id = $1`,
		id, string(update.Status), update.RecordsFetched, update.RecordsCreated,
		update.RecordsUpdated, update.RecordsFailed, update.ErrorMessage,
		update.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to update sync log %s: %w", id, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Postgres) Close() error {
	return s.db.Close()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
