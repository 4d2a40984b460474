package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	db "github.com/JonMunkholm/flatbridge/internal/database"
	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// CreateConfig saves a named transfer configuration for the user.
func (s *Service) CreateConfig(ctx context.Context, userID string, in SavedConfigInput) (*SavedConfig, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	enc, err := encodeConfig(in)
	if err != nil {
		return nil, err
	}

	row, err := s.store.CreateSavedConfiguration(ctx, db.CreateSavedConfigurationParams{
		UserID:          uid,
		Name:            enc.name,
		Direction:       enc.direction,
		SourceConfig:    enc.source,
		FileConfig:      enc.file,
		TableName:       enc.table,
		SelectedColumns: enc.selected,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, enc.name)
		}
		return nil, fmt.Errorf("create configuration: %w", err)
	}
	return configFromRow(row)
}

// GetConfig returns one of the user's configurations.
func (s *Service) GetConfig(ctx context.Context, userID, id string) (*SavedConfig, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	cid, err := parseUUID(id, "configuration")
	if err != nil {
		return nil, err
	}

	row, err := s.store.GetSavedConfiguration(ctx, db.GetSavedConfigurationParams{ID: cid, UserID: uid})
	if err != nil {
		return nil, fmt.Errorf("get configuration: %w", notFound(err, "configuration"))
	}
	return configFromRow(row)
}

// ListConfigs returns the user's configurations ordered by name.
func (s *Service) ListConfigs(ctx context.Context, userID string) ([]SavedConfig, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListSavedConfigurations(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}

	configs := make([]SavedConfig, 0, len(rows))
	for _, r := range rows {
		c, err := configFromRow(r)
		if err != nil {
			continue // Skip rows that no longer decode
		}
		configs = append(configs, *c)
	}
	return configs, nil
}

// UpdateConfig replaces the editable fields of a configuration.
func (s *Service) UpdateConfig(ctx context.Context, userID, id string, in SavedConfigInput) (*SavedConfig, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	cid, err := parseUUID(id, "configuration")
	if err != nil {
		return nil, err
	}
	enc, err := encodeConfig(in)
	if err != nil {
		return nil, err
	}

	row, err := s.store.UpdateSavedConfiguration(ctx, db.UpdateSavedConfigurationParams{
		ID:              cid,
		UserID:          uid,
		Name:            enc.name,
		Direction:       enc.direction,
		SourceConfig:    enc.source,
		FileConfig:      enc.file,
		TableName:       enc.table,
		SelectedColumns: enc.selected,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, enc.name)
		}
		return nil, fmt.Errorf("update configuration: %w", notFound(err, "configuration"))
	}
	return configFromRow(row)
}

// DeleteConfig removes one of the user's configurations.
func (s *Service) DeleteConfig(ctx context.Context, userID, id string) error {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return err
	}
	cid, err := parseUUID(id, "configuration")
	if err != nil {
		return err
	}

	n, err := s.store.DeleteSavedConfiguration(ctx, db.DeleteSavedConfigurationParams{ID: cid, UserID: uid})
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("configuration %w", ErrNotFound)
	}
	return nil
}

type encodedConfig struct {
	name      string
	direction string
	source    []byte
	file      []byte
	table     string
	selected  []byte
}

// encodeConfig validates in and marshals its JSON columns. The source
// password is never stored.
func encodeConfig(in SavedConfigInput) (encodedConfig, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return encodedConfig{}, fmt.Errorf("configuration name is required")
	}

	dir, err := schema.ParseDirection(string(in.Direction))
	if err != nil {
		return encodedConfig{}, err
	}

	file := in.File
	file.Filename = strings.TrimSpace(file.Filename)
	d, err := flatfile.ParseDelimiter(file.Delimiter)
	if err != nil {
		return encodedConfig{}, err
	}
	file.Delimiter = string(d)

	source, err := json.Marshal(in.Source.Redacted())
	if err != nil {
		return encodedConfig{}, fmt.Errorf("marshal source: %w", err)
	}
	fileJSON, err := json.Marshal(file)
	if err != nil {
		return encodedConfig{}, fmt.Errorf("marshal file settings: %w", err)
	}

	selected := in.Selected
	if selected == nil {
		selected = []string{}
	}
	selectedJSON, err := json.Marshal(selected)
	if err != nil {
		return encodedConfig{}, fmt.Errorf("marshal selected columns: %w", err)
	}

	return encodedConfig{
		name:      name,
		direction: string(dir),
		source:    source,
		file:      fileJSON,
		table:     strings.TrimSpace(in.Table),
		selected:  selectedJSON,
	}, nil
}

func configFromRow(r db.SavedConfiguration) (*SavedConfig, error) {
	var src schema.SourceConfig
	if err := json.Unmarshal(r.SourceConfig, &src); err != nil {
		return nil, fmt.Errorf("unmarshal source: %w", err)
	}

	var file FileSettings
	if err := json.Unmarshal(r.FileConfig, &file); err != nil {
		return nil, fmt.Errorf("unmarshal file settings: %w", err)
	}

	var selected []string
	if err := json.Unmarshal(r.SelectedColumns, &selected); err != nil {
		return nil, fmt.Errorf("unmarshal selected columns: %w", err)
	}
	if selected == nil {
		selected = []string{}
	}

	return &SavedConfig{
		ID:        uuidString(r.ID),
		Name:      r.Name,
		Direction: schema.Direction(r.Direction),
		Source:    src.Redacted(),
		File:      file,
		Table:     r.TableName,
		Selected:  selected,
		CreatedAt: timeOf(r.CreatedAt),
		UpdatedAt: timeOf(r.UpdatedAt),
	}, nil
}
