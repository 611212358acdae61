package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS bet_submissions (
	id             UUID PRIMARY KEY,
	session_id     TEXT        NOT NULL,
	fixture_id     BIGINT      NOT NULL,
	bet_type       TEXT        NOT NULL,
	amount         BIGINT      NOT NULL,
	predicted_home INT,
	predicted_away INT,
	multiplier     TEXT        NOT NULL,
	status         TEXT        NOT NULL,
	message        TEXT        NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bet_submissions_session_idx ON bet_submissions (session_id, created_at DESC);`

// Postgres grava o histórico de tentativas de aposta
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria a tabela se ainda não existir
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create bet_submissions: %w", err)
	}
	return nil
}

// Record insere a tentativa e devolve o id gerado
func (p *Postgres) Record(ctx context.Context, s *Submission) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_submissions
			(id,session_id,fixture_id,bet_type,amount,predicted_home,predicted_away,multiplier,status,message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, s.SessionID, s.FixtureID, s.BetType, s.Amount,
		nullInt(s.PredictedHome), nullInt(s.PredictedAway),
		s.Multiplier, s.Status, s.Message,
	)
	if err != nil {
		return "", err
	}
	s.ID = id
	return id, nil
}

// ListBySession devolve as últimas tentativas da sessão, mais recentes primeiro
func (p *Postgres) ListBySession(ctx context.Context, sessionID string, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,session_id,fixture_id,bet_type,amount,predicted_home,predicted_away,multiplier,status,message,created_at
		FROM bet_submissions WHERE session_id=$1 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var (
			s          Submission
			home, away sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &s.FixtureID, &s.BetType, &s.Amount,
			&home, &away, &s.Multiplier, &s.Status, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.PredictedHome = intPtr(home)
		s.PredictedAway = intPtr(away)
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
