// source: jobs.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createIngestJob = `-- name: CreateIngestJob :one
INSERT INTO ingest_jobs (user_id, direction, table_name, filename, selected_columns)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, direction, table_name, filename, selected_columns, status, records_processed, message, error, started_at, completed_at
`

type CreateIngestJobParams struct {
	UserID          pgtype.UUID
	Direction       string
	TableName       string
	Filename        string
	SelectedColumns []byte
}

func (q *Queries) CreateIngestJob(ctx context.Context, arg CreateIngestJobParams) (IngestJob, error) {
	row := q.db.QueryRow(ctx, createIngestJob,
		arg.UserID,
		arg.Direction,
		arg.TableName,
		arg.Filename,
		arg.SelectedColumns,
	)
	var i IngestJob
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Direction,
		&i.TableName,
		&i.Filename,
		&i.SelectedColumns,
		&i.Status,
		&i.RecordsProcessed,
		&i.Message,
		&i.Error,
		&i.StartedAt,
		&i.CompletedAt,
	)
	return i, err
}

const completeIngestJob = `-- name: CompleteIngestJob :exec
UPDATE ingest_jobs
SET status = $2,
    records_processed = $3,
    message = $4,
    error = $5,
    completed_at = now()
WHERE id = $1
`

type CompleteIngestJobParams struct {
	ID               pgtype.UUID
	Status           string
	RecordsProcessed pgtype.Int4
	Message          pgtype.Text
	Error            pgtype.Text
}

func (q *Queries) CompleteIngestJob(ctx context.Context, arg CompleteIngestJobParams) error {
	_, err := q.db.Exec(ctx, completeIngestJob,
		arg.ID,
		arg.Status,
		arg.RecordsProcessed,
		arg.Message,
		arg.Error,
	)
	return err
}

const getIngestJob = `-- name: GetIngestJob :one
SELECT id, user_id, direction, table_name, filename, selected_columns, status, records_processed, message, error, started_at, completed_at
FROM ingest_jobs
WHERE id = $1 AND user_id = $2
`

type GetIngestJobParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) GetIngestJob(ctx context.Context, arg GetIngestJobParams) (IngestJob, error) {
	row := q.db.QueryRow(ctx, getIngestJob, arg.ID, arg.UserID)
	var i IngestJob
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Direction,
		&i.TableName,
		&i.Filename,
		&i.SelectedColumns,
		&i.Status,
		&i.RecordsProcessed,
		&i.Message,
		&i.Error,
		&i.StartedAt,
		&i.CompletedAt,
	)
	return i, err
}

const listIngestJobs = `-- name: ListIngestJobs :many
SELECT id, user_id, direction, table_name, filename, selected_columns, status, records_processed, message, error, started_at, completed_at
FROM ingest_jobs
WHERE user_id = $1
ORDER BY started_at DESC
LIMIT $2
`

type ListIngestJobsParams struct {
	UserID pgtype.UUID
	Limit  int32
}

func (q *Queries) ListIngestJobs(ctx context.Context, arg ListIngestJobsParams) ([]IngestJob, error) {
	rows, err := q.db.Query(ctx, listIngestJobs, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IngestJob
	for rows.Next() {
		var i IngestJob
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Direction,
			&i.TableName,
			&i.Filename,
			&i.SelectedColumns,
			&i.Status,
			&i.RecordsProcessed,
			&i.Message,
			&i.Error,
			&i.StartedAt,
			&i.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const purgeIngestJobs = `-- name: PurgeIngestJobs :execrows
DELETE FROM ingest_jobs
WHERE started_at < now() - make_interval(days => $1::int)
`

func (q *Queries) PurgeIngestJobs(ctx context.Context, days int32) (int64, error) {
	result, err := q.db.Exec(ctx, purgeIngestJobs, days)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
