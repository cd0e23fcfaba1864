package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenfoundry/internal/model"
)

// Store provides Postgres persistence for deployment history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertDeployments stores a batch of deployment attempt records.
func (s *Store) InsertDeployments(ctx context.Context, records []model.DeploymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO deployments (
				chain_id, name, symbol, token_admin, tx_hash, token_address,
				expected_address, vanity, gas_limit, value, error_kind,
				error_label, error_raw, submitted_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
		`,
			int64(r.ChainID),
			r.Name,
			r.Symbol,
			r.TokenAdmin,
			r.TxHash,
			r.TokenAddress,
			r.ExpectedAddress,
			r.Vanity,
			int64(r.GasLimit),
			r.Value,
			r.ErrorKind,
			r.ErrorLabel,
			r.ErrorRaw,
			r.SubmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastDeployment returns the most recent record for a token admin.
func (s *Store) LastDeployment(ctx context.Context, tokenAdmin string) (model.DeploymentRecord, bool, error) {
	if tokenAdmin == "" {
		return model.DeploymentRecord{}, false, fmt.Errorf("token admin required")
	}
	var (
		r       model.DeploymentRecord
		chainID int64
		gas     int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, name, symbol, token_admin, tx_hash, token_address,
		       expected_address, vanity, gas_limit, value, error_kind,
		       error_label, error_raw, submitted_at
		FROM deployments
		WHERE token_admin = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, tokenAdmin)
	if err := row.Scan(
		&chainID, &r.Name, &r.Symbol, &r.TokenAdmin, &r.TxHash, &r.TokenAddress,
		&r.ExpectedAddress, &r.Vanity, &gas, &r.Value, &r.ErrorKind,
		&r.ErrorLabel, &r.ErrorRaw, &r.SubmittedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeploymentRecord{}, false, nil
		}
		return model.DeploymentRecord{}, false, err
	}
	r.ChainID = uint64(chainID)
	r.GasLimit = uint64(gas)
	return r, true, nil
}
