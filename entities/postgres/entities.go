// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package postgres holds the PostgreSQL entity repository used to resolve
// routing information.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/routing"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var errUnsupportedType = errors.New("entity type is not stored")

var tables = map[entities.EntityType]string{
	entities.Device:     "devices",
	entities.Asset:      "assets",
	entities.EntityView: "entity_views",
	entities.Edge:       "edges",
}

var profileTables = map[entities.EntityType]string{
	entities.Device: "device_profiles",
	entities.Asset:  "asset_profiles",
}

// Record is a stored entity.
type Record struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Name       string
	Type       string
	ProfileID  uuid.UUID
}

var (
	_ routing.EntityLookup  = (*Repository)(nil)
	_ routing.ProfileSource = (*Repository)(nil)
)

// Repository reads and writes entity records and their profiles.
type Repository struct {
	db *sqlx.DB
}

// New returns a PostgreSQL entity repository.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Save stores an entity record of type t.
func (repo *Repository) Save(ctx context.Context, t entities.EntityType, r Record) error {
	table, ok := tables[t]
	if !ok {
		return errors.Wrap(errors.ErrCreateEntity, errUnsupportedType)
	}
	cols, vals := "id, tenant_id, customer_id, name, type", ":id, :tenant_id, :customer_id, :name, :type"
	if t.HasProfile() {
		cols, vals = cols+", profile_id", vals+", :profile_id"
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, table, cols, vals)

	if _, err := repo.db.NamedExecContext(ctx, q, toDBRecord(r)); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch pgErr.Code {
			case pgerrcode.InvalidTextRepresentation:
				return errors.Wrap(errors.ErrMalformedEntity, err)
			case pgerrcode.UniqueViolation:
				return errors.Wrap(errors.ErrConflict, err)
			}
		}
		return errors.Wrap(errors.ErrCreateEntity, err)
	}
	return nil
}

// SaveProfile stores the profile of entities of type t.
func (repo *Repository) SaveProfile(ctx context.Context, t entities.EntityType, tenantID uuid.UUID, name string, p routing.Profile) error {
	table, ok := profileTables[t]
	if !ok {
		return errors.Wrap(errors.ErrCreateEntity, errUnsupportedType)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name, default_rule_chain_id, default_queue_name)
        VALUES (:id, :tenant_id, :name, :default_rule_chain_id, :default_queue_name)`, table)

	dbp := dbProfile{
		ID:                 p.ID,
		TenantID:           tenantID,
		Name:               name,
		DefaultRuleChainID: p.DefaultRuleChainID,
		DefaultQueueName:   nullable(p.DefaultQueueName),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, dbp); err != nil {
		return errors.Wrap(errors.ErrCreateEntity, err)
	}
	return nil
}

// Find returns the routing information of entity.
func (repo *Repository) Find(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.EntityInfo, error) {
	table, ok := tables[entity.Type]
	if !ok {
		return routing.EntityInfo{}, errors.ErrNotFound
	}
	q := fmt.Sprintf(`SELECT customer_id, name, type FROM %s WHERE tenant_id = :tenant_id AND id = :id`, table)

	rows, err := repo.db.NamedQueryContext(ctx, q, dbRecord{ID: entity.ID, TenantID: tenantID})
	if err != nil {
		return routing.EntityInfo{}, errors.Wrap(errors.ErrViewEntity, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return routing.EntityInfo{}, errors.Wrap(errors.ErrViewEntity, err)
		}
		return routing.EntityInfo{}, errors.ErrNotFound
	}
	var dbr dbRecord
	if err := rows.StructScan(&dbr); err != nil {
		return routing.EntityInfo{}, errors.Wrap(errors.ErrViewEntity, err)
	}
	info := routing.EntityInfo{
		Name: dbr.Name,
		Type: dbr.Type,
	}
	if dbr.CustomerID != nil {
		info.CustomerID = *dbr.CustomerID
	}
	return info, nil
}

// Profile returns the profile bound to entity.
func (repo *Repository) Profile(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.Profile, error) {
	table, ok := tables[entity.Type]
	profiles, profiled := profileTables[entity.Type]
	if !ok || !profiled {
		return routing.Profile{}, errors.ErrNotFound
	}
	q := fmt.Sprintf(`SELECT p.id, p.default_rule_chain_id, p.default_queue_name
        FROM %s e JOIN %s p ON p.id = e.profile_id
        WHERE e.tenant_id = $1 AND e.id = $2`, table, profiles)

	var dbp dbProfile
	if err := repo.db.QueryRowxContext(ctx, q, tenantID, entity.ID).StructScan(&dbp); err != nil {
		if err == sql.ErrNoRows {
			return routing.Profile{}, errors.ErrNotFound
		}
		return routing.Profile{}, errors.Wrap(errors.ErrViewEntity, err)
	}

	p := routing.Profile{
		ID:                 dbp.ID,
		DefaultRuleChainID: dbp.DefaultRuleChainID,
	}
	if dbp.DefaultQueueName != nil {
		p.DefaultQueueName = *dbp.DefaultQueueName
	}
	return p, nil
}

type dbRecord struct {
	ID         uuid.UUID  `db:"id"`
	TenantID   uuid.UUID  `db:"tenant_id"`
	CustomerID *uuid.UUID `db:"customer_id"`
	Name       string     `db:"name"`
	Type       string     `db:"type"`
	ProfileID  *uuid.UUID `db:"profile_id"`
}

type dbProfile struct {
	ID                 uuid.UUID  `db:"id"`
	TenantID           uuid.UUID  `db:"tenant_id"`
	Name               string     `db:"name"`
	DefaultRuleChainID *uuid.UUID `db:"default_rule_chain_id"`
	DefaultQueueName   *string    `db:"default_queue_name"`
}

func toDBRecord(r Record) dbRecord {
	dbr := dbRecord{
		ID:       r.ID,
		TenantID: r.TenantID,
		Name:     r.Name,
		Type:     r.Type,
	}
	if r.CustomerID != uuid.Nil {
		id := r.CustomerID
		dbr.CustomerID = &id
	}
	if r.ProfileID != uuid.Nil {
		id := r.ProfileID
		dbr.ProfileID = &id
	}
	return dbr
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
