package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/flatbridge/internal/database"
)

// Store is the persistence the service needs. *database.Queries satisfies it.
type Store interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUser(ctx context.Context, id pgtype.UUID) (db.User, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)

	CreateSavedConfiguration(ctx context.Context, arg db.CreateSavedConfigurationParams) (db.SavedConfiguration, error)
	GetSavedConfiguration(ctx context.Context, arg db.GetSavedConfigurationParams) (db.SavedConfiguration, error)
	ListSavedConfigurations(ctx context.Context, userID pgtype.UUID) ([]db.SavedConfiguration, error)
	UpdateSavedConfiguration(ctx context.Context, arg db.UpdateSavedConfigurationParams) (db.SavedConfiguration, error)
	DeleteSavedConfiguration(ctx context.Context, arg db.DeleteSavedConfigurationParams) (int64, error)

	CreateIngestJob(ctx context.Context, arg db.CreateIngestJobParams) (db.IngestJob, error)
	CompleteIngestJob(ctx context.Context, arg db.CompleteIngestJobParams) error
	GetIngestJob(ctx context.Context, arg db.GetIngestJobParams) (db.IngestJob, error)
	ListIngestJobs(ctx context.Context, arg db.ListIngestJobsParams) ([]db.IngestJob, error)
	PurgeIngestJobs(ctx context.Context, days int32) (int64, error)
}

var _ Store = (*db.Queries)(nil)

var (
	// ErrNotFound is returned for a missing job, configuration or user, and
	// for ids that are not valid UUIDs.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrDuplicateName is returned when a user already has a configuration
	// with the same name.
	ErrDuplicateName = errors.New("a configuration with this name already exists")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// notFound converts pgx.ErrNoRows to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

func parseUUID(s, what string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%s %q %w", what, s, ErrNotFound)
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func timeOf(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
