// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build !rabbitmq && !kafka
// +build !rabbitmq,!kafka

package brokers

import (
	"context"
	"log"

	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/nats"
)

func init() {
	log.Println("The binary was build using NATS JetStream as the queue transport")
}

// NewProducer returns the producer of the transport selected at build time.
func NewProducer(ctx context.Context, cfg queue.Config, logger logger.Logger) (queue.Producer, error) {
	return nats.NewProducer(ctx, cfg.URL, cfg.Subjects(), logger)
}
