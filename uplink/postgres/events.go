// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package postgres holds the PostgreSQL cloud event repository.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/uplink"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var _ uplink.EventRepository = (*eventRepository)(nil)

type eventRepository struct {
	db *sqlx.DB
}

// New returns a PostgreSQL cloud event repository.
func New(db *sqlx.DB) uplink.EventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) Save(ctx context.Context, ev uplink.CloudEvent) error {
	q := `INSERT INTO cloud_events (id, tenant_id, type, action, entity_id, body, created_at)
          VALUES (:id, :tenant_id, :type, :action, :entity_id, :body, :created_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, toDBEvent(ev)); err != nil {
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

func (repo *eventRepository) RetrievePending(ctx context.Context, limit uint64) ([]uplink.CloudEvent, error) {
	q := `SELECT id, tenant_id, type, action, entity_id, body, created_at FROM cloud_events
          WHERE NOT sent ORDER BY created_at, id LIMIT :limit`

	rows, err := repo.db.NamedQueryContext(ctx, q, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, errors.Wrap(errors.ErrViewEntity, err)
	}
	defer rows.Close()

	var events []uplink.CloudEvent
	for rows.Next() {
		var dbe dbEvent
		if err := rows.StructScan(&dbe); err != nil {
			return nil, errors.Wrap(errors.ErrViewEntity, err)
		}
		events = append(events, toEvent(dbe))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrViewEntity, err)
	}
	return events, nil
}

func (repo *eventRepository) MarkSent(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	q := `UPDATE cloud_events SET sent = true WHERE id = ANY($1::uuid[])`
	if _, err := repo.db.ExecContext(ctx, q, strs); err != nil {
		return errors.Wrap(errors.ErrUpdateEntity, err)
	}
	return nil
}

type dbEvent struct {
	ID        uuid.UUID `db:"id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Type      string    `db:"type"`
	Action    string    `db:"action"`
	EntityID  uuid.UUID `db:"entity_id"`
	Body      []byte    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

func toDBEvent(ev uplink.CloudEvent) dbEvent {
	var body []byte
	if len(ev.Body) > 0 {
		body = ev.Body
	}
	return dbEvent{
		ID:        ev.ID,
		TenantID:  ev.TenantID,
		Type:      ev.Type,
		Action:    string(ev.Action),
		EntityID:  ev.EntityID,
		Body:      body,
		CreatedAt: ev.CreatedAt.UTC(),
	}
}

func toEvent(dbe dbEvent) uplink.CloudEvent {
	ev := uplink.CloudEvent{
		ID:        dbe.ID,
		TenantID:  dbe.TenantID,
		Type:      dbe.Type,
		Action:    uplink.ActionType(dbe.Action),
		EntityID:  dbe.EntityID,
		CreatedAt: dbe.CreatedAt,
	}
	if len(dbe.Body) > 0 {
		ev.Body = json.RawMessage(dbe.Body)
	}
	return ev
}
