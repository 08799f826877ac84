// Package store persists completed search jobs and the seeds they
// found. It records finished state only — the in-flight progress
// stream lives entirely in memory and is never written here.
package store

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rawblock/seedfinder/pkg/models"
)

type Store struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for seed store")
	return &Store{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/store/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("seed store schema initialized")
	return nil
}

// SaveJob inserts or updates a job row.
func (s *Store) SaveJob(ctx context.Context, job models.Job) error {
	sql := `
		INSERT INTO jobs (id, status, mode, output, observation_count, estimate, swept, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, estimate = EXCLUDED.estimate,
		    swept = EXCLUDED.swept, error = EXCLUDED.error, updated_at = EXCLUDED.updated_at;
	`
	_, err := s.pool.Exec(ctx, sql,
		job.ID, job.Status, job.Mode, job.Output, job.ObservationCount,
		int64(job.Estimate), int64(job.Swept), job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %v", err)
	}
	return nil
}

// SaveSeedResult persists one discovered seed. Seeds are stored as
// the bit-identical int64 reinterpretation of the uint64 candidate
// (NextLong can produce values whose top bit is set); ListSeedResults
// reverses the cast on the way out.
func (s *Store) SaveSeedResult(ctx context.Context, result models.SeedResult) error {
	sql := `INSERT INTO seed_results (job_id, seed, found_at) VALUES ($1, $2, $3);`
	_, err := s.pool.Exec(ctx, sql, result.JobID, int64(result.Seed), result.FoundAt)
	if err != nil {
		return fmt.Errorf("failed to save seed result: %v", err)
	}
	return nil
}

// ListSeedResults returns every seed found so far for a job, oldest first.
func (s *Store) ListSeedResults(ctx context.Context, jobID string) ([]models.SeedResult, error) {
	sql := `SELECT job_id, seed, found_at FROM seed_results WHERE job_id = $1 ORDER BY found_at ASC;`
	rows, err := s.pool.Query(ctx, sql, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seed results: %v", err)
	}
	defer rows.Close()

	var results []models.SeedResult
	for rows.Next() {
		var r models.SeedResult
		var seed int64
		if err := rows.Scan(&r.JobID, &seed, &r.FoundAt); err != nil {
			return nil, fmt.Errorf("failed to scan seed result: %v", err)
		}
		r.Seed = uint64(seed)
		results = append(results, r)
	}
	return results, nil
}

// ListJobs returns jobs ordered newest-first, up to limit.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	sql := `
		SELECT id, status, mode, output, observation_count, estimate, swept, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT $1;
	`
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %v", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		var estimate, swept int64
		if err := rows.Scan(&j.ID, &j.Status, &j.Mode, &j.Output, &j.ObservationCount,
			&estimate, &swept, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %v", err)
		}
		j.Estimate = uint64(estimate)
		j.Swept = uint64(swept)
		jobs = append(jobs, j)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}
