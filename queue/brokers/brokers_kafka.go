// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build kafka
// +build kafka

package brokers

import (
	"context"
	"log"
	"strings"

	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/kafka"
)

func init() {
	log.Println("The binary was build using Kafka as the queue transport")
}

// NewProducer returns the producer of the transport selected at build time.
// The URL is a comma separated list of broker addresses.
func NewProducer(_ context.Context, cfg queue.Config, _ logger.Logger) (queue.Producer, error) {
	return kafka.NewProducer(strings.Split(cfg.URL, ",")...), nil
}
