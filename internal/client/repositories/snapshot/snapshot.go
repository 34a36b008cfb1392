// Package snapshot persists the session state as one versioned record in the
// metadata table. Records are optionally sealed with AES-GCM.
//
// Record layout (JSON):
//
//	{"version":1,"state":{"isAuthenticated":false,"currentStep":"mobile","tempData":{}}}
//	{"version":1,"nonce":"<base64>","sealed":"<base64>"}
//
// Version 0 is the legacy layout written before sealing existed; it carries
// a plain "state" and is upgraded on the next save.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/dmitrijs2005/citizenportal/internal/cryptox"
	"github.com/dmitrijs2005/citizenportal/internal/dbx"
)

const (
	// Key is the fixed namespace key of the session record.
	Key = "auth-storage"
	// SaltKey holds the per-database salt used to derive the sealing key.
	SaltKey = Key + ".salt"

	// CurrentVersion is the record version written by Save.
	CurrentVersion = 1
)

var (
	ErrCorrupt            = errors.New("session record is corrupt")
	ErrUnsupportedVersion = errors.New("unsupported session record version")
	ErrSecretRequired     = errors.New("session record is sealed but no storage secret is configured")
)

// Repository loads and stores the session state.
//
// Load reports found=false (and the initial state) when nothing has been
// persisted yet.
type Repository interface {
	Load(ctx context.Context) (state models.State, found bool, err error)
	Save(ctx context.Context, state models.State) error
	Delete(ctx context.Context) error
}

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state,omitempty"`
	Nonce   []byte          `json:"nonce,omitempty"`
	Sealed  []byte          `json:"sealed,omitempty"`
}

// SQLiteRepository stores the record through a metadata repository bound to
// a transaction.
type SQLiteRepository struct {
	db     *sql.DB
	secret []byte
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithSecret enables sealing. An empty secret leaves records in plain JSON.
func WithSecret(secret string) Option {
	return func(r *SQLiteRepository) {
		if secret != "" {
			r.secret = []byte(secret)
		}
	}
}

func NewSQLiteRepository(db *sql.DB, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save writes state under Key in a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, state models.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		env := envelope{Version: CurrentVersion}
		if r.secret == nil {
			env.State = plain
		} else {
			key, err := r.sealingKey(ctx, repo, true)
			if err != nil {
				return err
			}
			env.Sealed, env.Nonce, err = cryptox.Seal(plain, key, []byte(Key))
			if err != nil {
				return fmt.Errorf("seal session state: %w", err)
			}
		}

		blob, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode session record: %w", err)
		}
		return repo.Set(ctx, Key, blob)
	})
}

// Load reads and decodes the record.
func (r *SQLiteRepository) Load(ctx context.Context) (models.State, bool, error) {
	repo := metadata.NewSQLiteRepository(r.db)

	blob, err := repo.Get(ctx, Key)
	if err != nil {
		return models.InitialState(), false, err
	}
	if blob == nil {
		return models.InitialState(), false, nil
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return models.InitialState(), false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	plain, err := r.payload(ctx, repo, env)
	if err != nil {
		return models.InitialState(), false, err
	}

	state := models.InitialState()
	if err := json.Unmarshal(plain, &state); err != nil {
		return models.InitialState(), false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return state, true, nil
}

// Delete removes the record and its salt.
func (r *SQLiteRepository) Delete(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, Key); err != nil {
			return err
		}
		return repo.Delete(ctx, SaltKey)
	})
}

func (r *SQLiteRepository) payload(ctx context.Context, repo metadata.Repository, env envelope) ([]byte, error) {
	switch env.Version {
	case 0:
		if env.State == nil {
			return nil, fmt.Errorf("%w: legacy record without state", ErrCorrupt)
		}
		return env.State, nil
	case CurrentVersion:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	if env.Sealed == nil {
		if env.State == nil {
			return nil, fmt.Errorf("%w: record has neither state nor sealed payload", ErrCorrupt)
		}
		return env.State, nil
	}

	if r.secret == nil {
		return nil, ErrSecretRequired
	}
	key, err := r.sealingKey(ctx, repo, false)
	if err != nil {
		return nil, err
	}
	plain, err := cryptox.Open(env.Sealed, env.Nonce, key, []byte(Key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return plain, nil
}

// sealingKey derives the key from the configured secret and the stored salt,
// creating the salt when create is set.
func (r *SQLiteRepository) sealingKey(ctx context.Context, repo metadata.Repository, create bool) ([]byte, error) {
	salt, err := repo.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		if !create {
			return nil, fmt.Errorf("%w: sealing salt is missing", ErrCorrupt)
		}
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := repo.Set(ctx, SaltKey, salt); err != nil {
			return nil, err
		}
	}
	return cryptox.DeriveKey(r.secret, salt), nil
}
