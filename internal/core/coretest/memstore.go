// Package coretest provides an in-memory store for tests of the service
// and the HTTP layer.
package coretest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/flatbridge/internal/database"
)

// MemStore implements core.Store in memory. The Err fields, when set, are
// returned by the matching method instead of touching the data.
type MemStore struct {
	mu      sync.Mutex
	users   map[[16]byte]db.User
	configs map[[16]byte]db.SavedConfiguration
	jobs    map[[16]byte]db.IngestJob

	// Now stamps created rows; defaults to time.Now.
	Now func() time.Time

	CreateJobErr   error
	CompleteJobErr error
	PurgeErr       error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:   make(map[[16]byte]db.User),
		configs: make(map[[16]byte]db.SavedConfiguration),
		jobs:    make(map[[16]byte]db.IngestJob),
		Now:     time.Now,
	}
}

func (m *MemStore) newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func (m *MemStore) stamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: m.Now(), Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}

func (m *MemStore) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == arg.Username {
			return db.User{}, uniqueViolation("users_username_unique")
		}
	}
	u := db.User{ID: m.newID(), Username: arg.Username, PasswordHash: arg.PasswordHash, CreatedAt: m.stamp()}
	m.users[u.ID.Bytes] = u
	return u, nil
}

func (m *MemStore) GetUser(_ context.Context, id pgtype.UUID) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id.Bytes]
	if !ok {
		return db.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *MemStore) GetUserByUsername(_ context.Context, username string) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return db.User{}, pgx.ErrNoRows
}

func (m *MemStore) CreateSavedConfiguration(_ context.Context, arg db.CreateSavedConfigurationParams) (db.SavedConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(arg.UserID, arg.Name, pgtype.UUID{}) {
		return db.SavedConfiguration{}, uniqueViolation("saved_configurations_user_name_unique")
	}
	now := m.stamp()
	c := db.SavedConfiguration{
		ID:              m.newID(),
		UserID:          arg.UserID,
		Name:            arg.Name,
		Direction:       arg.Direction,
		SourceConfig:    arg.SourceConfig,
		FileConfig:      arg.FileConfig,
		TableName:       arg.TableName,
		SelectedColumns: arg.SelectedColumns,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.configs[c.ID.Bytes] = c
	return c, nil
}

func (m *MemStore) nameTaken(userID pgtype.UUID, name string, except pgtype.UUID) bool {
	for id, c := range m.configs {
		if c.UserID == userID && c.Name == name && id != except.Bytes {
			return true
		}
	}
	return false
}

func (m *MemStore) GetSavedConfiguration(_ context.Context, arg db.GetSavedConfigurationParams) (db.SavedConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.configs[arg.ID.Bytes]
	if !ok || c.UserID != arg.UserID {
		return db.SavedConfiguration{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *MemStore) ListSavedConfigurations(_ context.Context, userID pgtype.UUID) ([]db.SavedConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.SavedConfiguration
	for _, c := range m.configs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) UpdateSavedConfiguration(_ context.Context, arg db.UpdateSavedConfigurationParams) (db.SavedConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.configs[arg.ID.Bytes]
	if !ok || c.UserID != arg.UserID {
		return db.SavedConfiguration{}, pgx.ErrNoRows
	}
	if m.nameTaken(arg.UserID, arg.Name, arg.ID) {
		return db.SavedConfiguration{}, uniqueViolation("saved_configurations_user_name_unique")
	}
	c.Name = arg.Name
	c.Direction = arg.Direction
	c.SourceConfig = arg.SourceConfig
	c.FileConfig = arg.FileConfig
	c.TableName = arg.TableName
	c.SelectedColumns = arg.SelectedColumns
	c.UpdatedAt = m.stamp()
	m.configs[c.ID.Bytes] = c
	return c, nil
}

func (m *MemStore) DeleteSavedConfiguration(_ context.Context, arg db.DeleteSavedConfigurationParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.configs[arg.ID.Bytes]
	if !ok || c.UserID != arg.UserID {
		return 0, nil
	}
	delete(m.configs, arg.ID.Bytes)
	return 1, nil
}

func (m *MemStore) CreateIngestJob(_ context.Context, arg db.CreateIngestJobParams) (db.IngestJob, error) {
	if m.CreateJobErr != nil {
		return db.IngestJob{}, m.CreateJobErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	j := db.IngestJob{
		ID:              m.newID(),
		UserID:          arg.UserID,
		Direction:       arg.Direction,
		TableName:       arg.TableName,
		Filename:        arg.Filename,
		SelectedColumns: arg.SelectedColumns,
		Status:          "pending",
		StartedAt:       m.stamp(),
	}
	m.jobs[j.ID.Bytes] = j
	return j, nil
}

func (m *MemStore) CompleteIngestJob(_ context.Context, arg db.CompleteIngestJobParams) error {
	if m.CompleteJobErr != nil {
		return m.CompleteJobErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[arg.ID.Bytes]
	if !ok {
		return nil
	}
	j.Status = arg.Status
	j.RecordsProcessed = arg.RecordsProcessed
	j.Message = arg.Message
	j.Error = arg.Error
	j.CompletedAt = m.stamp()
	m.jobs[j.ID.Bytes] = j
	return nil
}

func (m *MemStore) GetIngestJob(_ context.Context, arg db.GetIngestJobParams) (db.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[arg.ID.Bytes]
	if !ok || j.UserID != arg.UserID {
		return db.IngestJob{}, pgx.ErrNoRows
	}
	return j, nil
}

func (m *MemStore) ListIngestJobs(_ context.Context, arg db.ListIngestJobsParams) ([]db.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.IngestJob
	for _, j := range m.jobs {
		if j.UserID == arg.UserID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].StartedAt.Time.After(out[k].StartedAt.Time) })
	if int(arg.Limit) < len(out) {
		out = out[:arg.Limit]
	}
	return out, nil
}

func (m *MemStore) PurgeIngestJobs(_ context.Context, days int32) (int64, error) {
	if m.PurgeErr != nil {
		return 0, m.PurgeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.Now().AddDate(0, 0, -int(days))
	var n int64
	for id, j := range m.jobs {
		if j.StartedAt.Time.Before(cutoff) {
			delete(m.jobs, id)
			n++
		}
	}
	return n, nil
}

// JobCount returns the number of stored jobs.
func (m *MemStore) JobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
