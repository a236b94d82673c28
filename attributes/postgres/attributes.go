// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package postgres holds the PostgreSQL attribute store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/absmach/edgesync/attributes"
	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/future"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	errInvalidValue  = errors.New("unsupported attribute value")
	errTransRollback = errors.New("failed to rollback transaction")
)

var _ attributes.Store = (*store)(nil)

type store struct {
	db *sqlx.DB
}

// New returns a PostgreSQL attribute store.
func New(db *sqlx.DB) attributes.Store {
	return &store{db: db}
}

func (s *store) Save(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, kvs []attributes.KeyValue) *future.Future {
	f := future.New()
	go func() {
		f.Complete(s.save(ctx, tenantID, entity, scope, kvs))
	}()
	return f
}

func (s *store) save(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, kvs []attributes.KeyValue) (err error) {
	q := `INSERT INTO attribute_kv (tenant_id, entity_type, entity_id, attribute_type, attribute_key,
          bool_v, str_v, long_v, dbl_v, json_v, last_update_ts)
          VALUES (:tenant_id, :entity_type, :entity_id, :attribute_type, :attribute_key,
          :bool_v, :str_v, :long_v, :dbl_v, :json_v, :last_update_ts)
          ON CONFLICT (entity_id, attribute_type, attribute_key) DO UPDATE SET
          bool_v = EXCLUDED.bool_v, str_v = EXCLUDED.str_v, long_v = EXCLUDED.long_v,
          dbl_v = EXCLUDED.dbl_v, json_v = EXCLUDED.json_v, last_update_ts = EXCLUDED.last_update_ts;`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrSaveAttributes, err)
	}
	defer func() {
		if err != nil {
			if txErr := tx.Rollback(); txErr != nil {
				err = errors.Wrap(err, errors.Wrap(errTransRollback, txErr))
			}
			return
		}

		if err = tx.Commit(); err != nil {
			err = errors.Wrap(errors.ErrSaveAttributes, err)
		}
	}()

	for _, kv := range kvs {
		var row dbAttribute
		row, err = toDBAttribute(tenantID, entity, scope, kv)
		if err != nil {
			return errors.Wrap(errors.ErrSaveAttributes, err)
		}
		if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
			if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.InvalidTextRepresentation {
				return errors.Wrap(errors.ErrSaveAttributes, errors.ErrMalformedEntity)
			}
			return errors.Wrap(errors.ErrSaveAttributes, err)
		}
	}
	return nil
}

func (s *store) RemoveAll(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID, scope string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	q := `DELETE FROM attribute_kv WHERE tenant_id = $1 AND entity_id = $2 AND attribute_type = $3 AND attribute_key = ANY($4);`
	// pgx encodes []string as text[].
	if _, err := s.db.ExecContext(ctx, q, tenantID, entity.ID, scope, keys); err != nil {
		return errors.Wrap(errors.ErrRemoveAttributes, err)
	}
	return nil
}

type dbAttribute struct {
	TenantID     uuid.UUID `db:"tenant_id"`
	EntityType   string    `db:"entity_type"`
	EntityID     uuid.UUID `db:"entity_id"`
	Scope        string    `db:"attribute_type"`
	Key          string    `db:"attribute_key"`
	BoolV        *bool     `db:"bool_v"`
	StrV         *string   `db:"str_v"`
	LongV        *int64    `db:"long_v"`
	DblV         *float64  `db:"dbl_v"`
	JSONV        []byte    `db:"json_v"`
	LastUpdateTS int64     `db:"last_update_ts"`
}

func toDBAttribute(tenantID uuid.UUID, entity entities.EntityID, scope string, kv attributes.KeyValue) (dbAttribute, error) {
	row := dbAttribute{
		TenantID:     tenantID,
		EntityType:   string(entity.Type),
		EntityID:     entity.ID,
		Scope:        scope,
		Key:          kv.Key,
		LastUpdateTS: kv.LastUpdateTS,
	}
	switch v := kv.Value.(type) {
	case bool:
		row.BoolV = &v
	case string:
		row.StrV = &v
	case int64:
		row.LongV = &v
	case float64:
		row.DblV = &v
	case json.RawMessage:
		row.JSONV = v
	default:
		return dbAttribute{}, errors.Wrap(errInvalidValue, fmt.Errorf("%s has value of type %T", kv.Key, kv.Value))
	}
	return row, nil
}
