// source: configurations.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSavedConfiguration = `-- name: CreateSavedConfiguration :one
INSERT INTO saved_configurations (
    user_id, name, direction, source_config, file_config, table_name, selected_columns
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, name, direction, source_config, file_config, table_name, selected_columns, created_at, updated_at
`

type CreateSavedConfigurationParams struct {
	UserID          pgtype.UUID
	Name            string
	Direction       string
	SourceConfig    []byte
	FileConfig      []byte
	TableName       string
	SelectedColumns []byte
}

func (q *Queries) CreateSavedConfiguration(ctx context.Context, arg CreateSavedConfigurationParams) (SavedConfiguration, error) {
	row := q.db.QueryRow(ctx, createSavedConfiguration,
		arg.UserID,
		arg.Name,
		arg.Direction,
		arg.SourceConfig,
		arg.FileConfig,
		arg.TableName,
		arg.SelectedColumns,
	)
	var i SavedConfiguration
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Direction,
		&i.SourceConfig,
		&i.FileConfig,
		&i.TableName,
		&i.SelectedColumns,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getSavedConfiguration = `-- name: GetSavedConfiguration :one
SELECT id, user_id, name, direction, source_config, file_config, table_name, selected_columns, created_at, updated_at
FROM saved_configurations
WHERE id = $1 AND user_id = $2
`

type GetSavedConfigurationParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) GetSavedConfiguration(ctx context.Context, arg GetSavedConfigurationParams) (SavedConfiguration, error) {
	row := q.db.QueryRow(ctx, getSavedConfiguration, arg.ID, arg.UserID)
	var i SavedConfiguration
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Direction,
		&i.SourceConfig,
		&i.FileConfig,
		&i.TableName,
		&i.SelectedColumns,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listSavedConfigurations = `-- name: ListSavedConfigurations :many
SELECT id, user_id, name, direction, source_config, file_config, table_name, selected_columns, created_at, updated_at
FROM saved_configurations
WHERE user_id = $1
ORDER BY name
`

func (q *Queries) ListSavedConfigurations(ctx context.Context, userID pgtype.UUID) ([]SavedConfiguration, error) {
	rows, err := q.db.Query(ctx, listSavedConfigurations, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SavedConfiguration
	for rows.Next() {
		var i SavedConfiguration
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Direction,
			&i.SourceConfig,
			&i.FileConfig,
			&i.TableName,
			&i.SelectedColumns,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateSavedConfiguration = `-- name: UpdateSavedConfiguration :one
UPDATE saved_configurations
SET name = $3,
    direction = $4,
    source_config = $5,
    file_config = $6,
    table_name = $7,
    selected_columns = $8,
    updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name, direction, source_config, file_config, table_name, selected_columns, created_at, updated_at
`

type UpdateSavedConfigurationParams struct {
	ID              pgtype.UUID
	UserID          pgtype.UUID
	Name            string
	Direction       string
	SourceConfig    []byte
	FileConfig      []byte
	TableName       string
	SelectedColumns []byte
}

func (q *Queries) UpdateSavedConfiguration(ctx context.Context, arg UpdateSavedConfigurationParams) (SavedConfiguration, error) {
	row := q.db.QueryRow(ctx, updateSavedConfiguration,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Direction,
		arg.SourceConfig,
		arg.FileConfig,
		arg.TableName,
		arg.SelectedColumns,
	)
	var i SavedConfiguration
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Direction,
		&i.SourceConfig,
		&i.FileConfig,
		&i.TableName,
		&i.SelectedColumns,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteSavedConfiguration = `-- name: DeleteSavedConfiguration :execrows
DELETE FROM saved_configurations
WHERE id = $1 AND user_id = $2
`

type DeleteSavedConfigurationParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) DeleteSavedConfiguration(ctx context.Context, arg DeleteSavedConfigurationParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSavedConfiguration, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
