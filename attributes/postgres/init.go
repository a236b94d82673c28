// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	pgclient "github.com/absmach/edgesync/internal/clients/postgres"
	migrate "github.com/rubenv/sql-migrate"
)

// Migration of the attribute store.
func Migration() pgclient.Migrations {
	return pgclient.Migrations{
		Table: "attributes_migrations",
		Source: migrate.MemoryMigrationSource{
			Migrations: []*migrate.Migration{
				{
					Id: "attributes_1",
					Up: []string{
						`CREATE TABLE IF NOT EXISTS attribute_kv (
                            tenant_id       UUID         NOT NULL,
                            entity_type     VARCHAR(32)  NOT NULL,
                            entity_id       UUID         NOT NULL,
                            attribute_type  VARCHAR(32)  NOT NULL,
                            attribute_key   VARCHAR(255) NOT NULL,
                            bool_v          BOOLEAN,
                            str_v           TEXT,
                            long_v          BIGINT,
                            dbl_v           DOUBLE PRECISION,
                            json_v          JSONB,
                            last_update_ts  BIGINT       NOT NULL,
                            PRIMARY KEY (entity_id, attribute_type, attribute_key)
                        )`,
					},
					Down: []string{
						"DROP TABLE attribute_kv",
					},
				},
			},
		},
	}
}
