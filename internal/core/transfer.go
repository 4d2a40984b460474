package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/flatbridge/internal/database"
	"github.com/JonMunkholm/flatbridge/internal/logging"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// DefaultJobListLimit and MaxJobListLimit bound ListJobs.
const (
	DefaultJobListLimit = 50
	MaxJobListLimit     = 500
)

// Transfer runs req for the user under the transfer limiter and records it
// as a job. The returned result is the orchestrator's, unmodified; the error
// is non-nil only when the transfer could not start (busy, cancelled, or the
// job could not be recorded).
func (s *Service) Transfer(ctx context.Context, userID string, req TransferRequest) (*Job, schema.IngestionResult, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, schema.IngestionResult{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, schema.IngestionResult{}, err
	}
	defer s.limiter.Release()

	selected := req.Selected
	if selected == nil {
		selected = []string{}
	}
	selectedJSON, err := json.Marshal(selected)
	if err != nil {
		return nil, schema.IngestionResult{}, fmt.Errorf("marshal selected columns: %w", err)
	}

	row, err := s.store.CreateIngestJob(ctx, db.CreateIngestJobParams{
		UserID:          uid,
		Direction:       string(req.Direction),
		TableName:       req.Table,
		Filename:        req.File.Filename,
		SelectedColumns: selectedJSON,
	})
	if err != nil {
		return nil, schema.IngestionResult{}, fmt.Errorf("create job: %w", err)
	}

	job := jobFromRow(row)
	logger := logging.WithFields(ctx,
		"job_id", job.ID,
		"direction", req.Direction,
		"table", req.Table,
		"filename", req.File.Filename,
		"client_ip", IPAddressFromContext(ctx),
	)
	logger.Info("transfer started")
	start := time.Now()

	result := s.orch.Transfer(ctx, req)

	params := db.CompleteIngestJobParams{ID: row.ID, Status: string(JobCompleted)}
	if result.Success {
		params.RecordsProcessed = pgtype.Int4{Int32: int32(result.Records()), Valid: true}
		params.Message = pgtype.Text{String: result.Message, Valid: true}
	} else {
		params.Status = string(JobFailed)
		params.Error = pgtype.Text{String: result.Error, Valid: true}
	}

	// The job row is finalised even if the request was cancelled mid-transfer.
	if err := s.store.CompleteIngestJob(context.WithoutCancel(ctx), params); err != nil {
		logger.Error("failed to record transfer result", "error", err)
	}

	now := time.Now()
	job.Status = JobStatus(params.Status)
	job.RecordsProcessed = result.RecordsProcessed
	job.Message = result.Message
	job.Error = result.Error
	job.CompletedAt = &now

	logger.Info("transfer finished",
		"success", result.Success,
		"records", result.Records(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return job, result, nil
}

// ListJobs returns the user's jobs, newest first. limit <= 0 uses
// DefaultJobListLimit; it is capped at MaxJobListLimit.
func (s *Service) ListJobs(ctx context.Context, userID string, limit int) ([]Job, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultJobListLimit
	}
	if limit > MaxJobListLimit {
		limit = MaxJobListLimit
	}

	rows, err := s.store.ListIngestJobs(ctx, db.ListIngestJobsParams{UserID: uid, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, *jobFromRow(r))
	}
	return jobs, nil
}

// GetJob returns one of the user's jobs.
func (s *Service) GetJob(ctx context.Context, userID, jobID string) (*Job, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	jid, err := parseUUID(jobID, "job")
	if err != nil {
		return nil, err
	}

	row, err := s.store.GetIngestJob(ctx, db.GetIngestJobParams{ID: jid, UserID: uid})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", notFound(err, "job"))
	}
	return jobFromRow(row), nil
}

func jobFromRow(r db.IngestJob) *Job {
	var selected []string
	if len(r.SelectedColumns) > 0 {
		// Written by Transfer; a malformed value only loses the column list.
		_ = json.Unmarshal(r.SelectedColumns, &selected)
	}
	if selected == nil {
		selected = []string{}
	}

	j := &Job{
		ID:        uuidString(r.ID),
		Direction: schema.Direction(r.Direction),
		Table:     r.TableName,
		Filename:  r.Filename,
		Selected:  selected,
		Status:    JobStatus(r.Status),
		StartedAt: timeOf(r.StartedAt),
	}
	if r.RecordsProcessed.Valid {
		n := int(r.RecordsProcessed.Int32)
		j.RecordsProcessed = &n
	}
	if r.Message.Valid {
		j.Message = r.Message.String
	}
	if r.Error.Valid {
		j.Error = r.Error.String
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		j.CompletedAt = &t
	}
	return j
}
