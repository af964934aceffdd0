package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/domain"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/repo"
)

type postgresResultRepo struct {
	db  *sql.DB
	log *log.Helper
}

func NewPostgresResultRepo(db *sql.DB, logger log.Logger) repo.ResultRepo {
	return &postgresResultRepo{db: db, log: log.NewHelper(logger)}
}

func (r *postgresResultRepo) Save(ctx context.Context, rec *domain.AnalysisRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, content_type, content, language, verdict, confidence, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			verdict = EXCLUDED.verdict,
			confidence = EXCLUDED.confidence,
			payload = EXCLUDED.payload
	`, rec.ID, rec.ContentType, rec.Content, rec.Language, rec.Verdict, rec.Confidence, []byte(rec.Payload), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, content_type, content, language, verdict, confidence, payload, created_at FROM analyses`

func scanRecord(row interface{ Scan(...any) error }) (*domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.ContentType, &rec.Content, &rec.Language,
		&rec.Verdict, &rec.Confidence, &payload, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Payload = payload
	return &rec, nil
}

func (r *postgresResultRepo) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrResultNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *postgresResultRepo) List(ctx context.Context, limit int) ([]*domain.AnalysisRecord, int, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
