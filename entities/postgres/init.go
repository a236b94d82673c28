// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	pgclient "github.com/absmach/edgesync/internal/clients/postgres"
	migrate "github.com/rubenv/sql-migrate"
)

// Migration of the entity repository.
func Migration() pgclient.Migrations {
	profiles := func(table string) string {
		return `CREATE TABLE IF NOT EXISTS ` + table + ` (
                    id                     UUID PRIMARY KEY,
                    tenant_id              UUID         NOT NULL,
                    name                   VARCHAR(255) NOT NULL,
                    default_rule_chain_id  UUID,
                    default_queue_name     VARCHAR(255)
                )`
	}
	records := func(table string, profiled bool) string {
		profile := ""
		if profiled {
			profile = "profile_id UUID,"
		}
		return `CREATE TABLE IF NOT EXISTS ` + table + ` (
                    id           UUID PRIMARY KEY,
                    tenant_id    UUID         NOT NULL,
                    customer_id  UUID,
                    name         VARCHAR(255) NOT NULL,
                    type         VARCHAR(255) NOT NULL,
                    ` + profile + `
                    created_at   TIMESTAMP    NOT NULL DEFAULT now()
                )`
	}

	return pgclient.Migrations{
		Table: "entities_migrations",
		Source: migrate.MemoryMigrationSource{
			Migrations: []*migrate.Migration{
				{
					Id: "entities_1",
					Up: []string{
						profiles("device_profiles"),
						profiles("asset_profiles"),
						records("devices", true),
						records("assets", true),
						records("entity_views", false),
						records("edges", false),
						`CREATE INDEX IF NOT EXISTS devices_tenant_idx ON devices (tenant_id)`,
						`CREATE INDEX IF NOT EXISTS assets_tenant_idx ON assets (tenant_id)`,
					},
					Down: []string{
						"DROP TABLE edges",
						"DROP TABLE entity_views",
						"DROP TABLE assets",
						"DROP TABLE devices",
						"DROP TABLE asset_profiles",
						"DROP TABLE device_profiles",
					},
				},
			},
		},
	}
}
