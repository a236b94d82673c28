// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	pgclient "github.com/absmach/edgesync/internal/clients/postgres"
	migrate "github.com/rubenv/sql-migrate"
)

// Migration of the cloud event repository.
func Migration() pgclient.Migrations {
	return pgclient.Migrations{
		Table: "uplink_migrations",
		Source: migrate.MemoryMigrationSource{
			Migrations: []*migrate.Migration{
				{
					Id: "uplink_1",
					Up: []string{
						`CREATE TABLE IF NOT EXISTS cloud_events (
                            id          UUID PRIMARY KEY,
                            tenant_id   UUID         NOT NULL,
                            type        VARCHAR(64)  NOT NULL,
                            action      VARCHAR(64)  NOT NULL,
                            entity_id   UUID         NOT NULL,
                            body        JSONB,
                            created_at  TIMESTAMP    NOT NULL,
                            sent        BOOLEAN      NOT NULL DEFAULT false
                        )`,
						`CREATE INDEX IF NOT EXISTS cloud_events_pending_idx ON cloud_events (created_at) WHERE NOT sent`,
					},
					Down: []string{
						"DROP TABLE cloud_events",
					},
				},
			},
		},
	}
}
