package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           pgtype.UUID
	Username     string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

type SavedConfiguration struct {
	ID              pgtype.UUID
	UserID          pgtype.UUID
	Name            string
	Direction       string
	SourceConfig    []byte
	FileConfig      []byte
	TableName       string
	SelectedColumns []byte
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type IngestJob struct {
	ID               pgtype.UUID
	UserID           pgtype.UUID
	Direction        string
	TableName        string
	Filename         string
	SelectedColumns  []byte
	Status           string
	RecordsProcessed pgtype.Int4
	Message          pgtype.Text
	Error            pgtype.Text
	StartedAt        pgtype.Timestamptz
	CompletedAt      pgtype.Timestamptz
}
