// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package nats_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"testing"

	mglog "github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/nats"
	dockertest "github.com/ory/dockertest/v3"
)

var (
	producer queue.Producer
	address  string
	subjects = []string{"tb_core.>", "tb_rule_engine.>"}
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	container, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "nats",
		Tag:        "2.10.4-alpine",
		Cmd:        []string{"-js"},
	})
	if err != nil {
		log.Fatalf("Could not start container: %s", err)
	}
	handleInterrupt(pool, container)

	address = fmt.Sprintf("nats://%s:%s", "localhost", container.GetPort("4222/tcp"))
	if err := pool.Retry(func() error {
		producer, err = nats.NewProducer(context.Background(), address, subjects, mglog.NewMock())
		return err
	}); err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	code := m.Run()

	producer.Close()
	if err := pool.Purge(container); err != nil {
		log.Fatalf("Could not purge container: %s", err)
	}

	os.Exit(code)
}

func handleInterrupt(pool *dockertest.Pool, container *dockertest.Resource) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		if err := pool.Purge(container); err != nil {
			log.Fatalf("Could not purge container: %s", err)
		}
		os.Exit(0)
	}()
}
