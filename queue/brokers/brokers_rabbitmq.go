// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build rabbitmq
// +build rabbitmq

package brokers

import (
	"context"
	"log"

	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/rabbitmq"
)

func init() {
	log.Println("The binary was build using RabbitMQ as the queue transport")
}

// NewProducer returns the producer of the transport selected at build time.
func NewProducer(_ context.Context, cfg queue.Config, _ logger.Logger) (queue.Producer, error) {
	return rabbitmq.NewProducer(cfg.URL)
}
