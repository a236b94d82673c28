// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/uuid"
)

// Config describes topic layout and transport connection.
type Config struct {
	URL                  string `env:"URL"                    envDefault:"nats://localhost:4222"`
	CoreTopic            string `env:"CORE_TOPIC"             envDefault:"tb_core"`
	CorePartitions       int    `env:"CORE_PARTITIONS"        envDefault:"10"`
	RuleEngineTopic      string `env:"RULE_ENGINE_TOPIC"      envDefault:"tb_rule_engine"`
	RuleEnginePartitions int    `env:"RULE_ENGINE_PARTITIONS" envDefault:"10"`
}

// Subjects returns wildcard subjects covering every topic of cfg.
func (cfg Config) Subjects() []string {
	return []string{cfg.CoreTopic + ".>", cfg.RuleEngineTopic + ".>"}
}

var _ PartitionService = (*hashPartitionService)(nil)

type hashPartitionService struct {
	cfg Config
}

// NewPartitionService returns a partition service that spreads entities over
// partitions by the hash of their id.
func NewPartitionService(cfg Config) PartitionService {
	if cfg.CorePartitions < 1 {
		cfg.CorePartitions = 1
	}
	if cfg.RuleEnginePartitions < 1 {
		cfg.RuleEnginePartitions = 1
	}
	return &hashPartitionService{cfg: cfg}
}

func (ps *hashPartitionService) Resolve(st ServiceType, queueName string, tenantID, entityID uuid.UUID) TopicPartition {
	topic, partitions := ps.cfg.CoreTopic, ps.cfg.CorePartitions
	if st == ServiceRuleEngine {
		if queueName == "" {
			queueName = MainQueue
		}
		topic = fmt.Sprintf("%s.%s", ps.cfg.RuleEngineTopic, strings.ToLower(queueName))
		partitions = ps.cfg.RuleEnginePartitions
	}

	return TopicPartition{
		ServiceType: st,
		TenantID:    tenantID,
		Topic:       topic,
		Partition:   int(xxhash.Sum64(entityID.Bytes()) % uint64(partitions)),
	}
}
