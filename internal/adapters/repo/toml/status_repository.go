package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	StatusPathKey     = "paths.status"
	defaultStatusFile = "status.toml"
)

// StatusRepository keeps the last reported status of every worker. Unlike
// the accounts file it holds nothing sensitive and is stored in the clear.
type StatusRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.StatusRepository = (*StatusRepository)(nil)

func NewStatusRepository(cfg *viper.Viper) (*StatusRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path, err := resolvePath(cfg.GetString(StatusPathKey), defaultStatusFile)
	if err != nil {
		return nil, err
	}

	return &StatusRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *StatusRepository) Save(ctx context.Context, status domain.AccountStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toStatusSchema(status)
	updated := false
	for i := range file.Statuses {
		if file.Statuses[i].AccountID == encoded.AccountID {
			file.Statuses[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Statuses = append(file.Statuses, encoded)
	}

	return r.writeSchema(file)
}

func (r *StatusRepository) GetByAccountID(ctx context.Context, id domain.AccountID) (domain.AccountStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountStatus{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.AccountStatus{}, err
	}

	for _, entry := range file.Statuses {
		if entry.AccountID == string(id) {
			return fromStatusSchema(entry), nil
		}
	}

	return domain.AccountStatus{}, domain.ErrStatusNotFound
}

func (r *StatusRepository) List(ctx context.Context) ([]domain.AccountStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.AccountStatus, 0, len(file.Statuses))
	for _, entry := range file.Statuses {
		statuses = append(statuses, fromStatusSchema(entry))
	}

	return statuses, nil
}

func (r *StatusRepository) Delete(ctx context.Context, id domain.AccountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Statuses[:0]
	found := false
	for _, entry := range file.Statuses {
		if entry.AccountID == string(id) {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return domain.ErrStatusNotFound
	}
	file.Statuses = kept

	return r.writeSchema(file)
}

func (r *StatusRepository) readSchema() (statusFileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return statusFileSchema{Version: currentSchemaVersion}, nil
		}
		return statusFileSchema{}, fmt.Errorf("read status file: %w", err)
	}

	var file statusFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return statusFileSchema{}, fmt.Errorf("decode status file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return statusFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *StatusRepository) writeSchema(file statusFileSchema) error {
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode status file: %w", err)
	}

	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}

	return nil
}

func toStatusSchema(status domain.AccountStatus) statusSchema {
	encoded := statusSchema{
		AccountID:    string(status.AccountID),
		Phase:        string(status.Phase),
		UpdatedAt:    formatTime(status.UpdatedAt),
		PlaysClaimed: status.PlaysClaimed,
		FarmClaims:   status.FarmClaims,
		LastError:    status.LastError,
		Terminated:   status.Terminated,
	}

	if status.Window != nil {
		window := windowSchema{
			ObservedAt:  formatTime(status.Window.ObservedAt),
			PlayPasses:  status.Window.PlayPasses,
			FastFarming: status.Window.FastFarming,
			Balance:     status.Window.Balance,
		}
		if status.Window.FarmStart != nil {
			window.FarmStart = formatTime(*status.Window.FarmStart)
		}
		if status.Window.FarmEnd != nil {
			window.FarmEnd = formatTime(*status.Window.FarmEnd)
		}
		encoded.Window = &window
	}

	return encoded
}

func fromStatusSchema(schema statusSchema) domain.AccountStatus {
	status := domain.AccountStatus{
		AccountID:    domain.AccountID(schema.AccountID),
		Phase:        domain.WorkerPhase(schema.Phase),
		UpdatedAt:    parseTime(schema.UpdatedAt),
		PlaysClaimed: schema.PlaysClaimed,
		FarmClaims:   schema.FarmClaims,
		LastError:    schema.LastError,
		Terminated:   schema.Terminated,
	}

	if schema.Window != nil {
		window := &domain.FarmingWindow{
			ObservedAt:  parseTime(schema.Window.ObservedAt),
			PlayPasses:  schema.Window.PlayPasses,
			FastFarming: schema.Window.FastFarming,
			Balance:     schema.Window.Balance,
		}
		if start := parseTime(schema.Window.FarmStart); !start.IsZero() {
			window.FarmStart = &start
		}
		if end := parseTime(schema.Window.FarmEnd); !end.IsZero() {
			window.FarmEnd = &end
		}
		status.Window = window
	}

	return status
}
