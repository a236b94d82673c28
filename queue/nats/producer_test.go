// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package nats_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/absmach/edgesync/queue"
	"github.com/absmach/edgesync/queue/nats"
	"github.com/gofrs/uuid"
	broker "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ackTimeout = 5 * time.Second

type outcome struct {
	md  queue.Metadata
	err error
}

func send(tpi queue.TopicPartition, msg queue.Msg) outcome {
	ch := make(chan outcome, 1)
	producer.Send(context.Background(), tpi, msg, queue.CallbackFuncs{
		Success: func(md queue.Metadata) { ch <- outcome{md: md} },
		Failure: func(err error) { ch <- outcome{err: err} },
	})
	select {
	case o := <-ch:
		return o
	case <-time.After(ackTimeout):
		return outcome{err: context.DeadlineExceeded}
	}
}

func TestSend(t *testing.T) {
	tenant := uuid.Must(uuid.NewV4())
	key := uuid.Must(uuid.NewV4())

	cases := []struct {
		desc    string
		tpi     queue.TopicPartition
		err     error
		subject string
	}{
		{
			desc:    "send to rule engine partition",
			tpi:     queue.TopicPartition{ServiceType: queue.ServiceRuleEngine, TenantID: tenant, Topic: "tb_rule_engine.main", Partition: 3},
			subject: "tb_rule_engine.main.3",
		},
		{
			desc:    "send to core partition",
			tpi:     queue.TopicPartition{ServiceType: queue.ServiceCore, TenantID: tenant, Topic: "tb_core", Partition: 0},
			subject: "tb_core.0",
		},
		{
			desc: "send with empty topic",
			tpi:  queue.TopicPartition{TenantID: tenant},
			err:  nats.ErrEmptyTopic,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			o := send(tc.tpi, queue.Msg{Key: key, Value: []byte(`{"temperature":21}`)})
			assert.Equal(t, tc.err, o.err, fmt.Sprintf("%s: expected %v got %v", tc.desc, tc.err, o.err))
			if tc.err == nil {
				assert.Equal(t, tc.subject, o.md.Topic)
				assert.Equal(t, tc.tpi.Partition, o.md.Partition)
				assert.Positive(t, o.md.Offset)
			}
		})
	}
}

func TestSendHeaders(t *testing.T) {
	conn, err := broker.Connect(address)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	defer conn.Close()
	js, err := jetstream.New(conn)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	tenant := uuid.Must(uuid.NewV4())
	key := uuid.Must(uuid.NewV4())
	tpi := queue.TopicPartition{ServiceType: queue.ServiceCore, TenantID: tenant, Topic: "tb_core", Partition: 7}

	o := send(tpi, queue.Msg{Key: key, Value: []byte("payload"), Headers: map[string]string{"type": "activity"}})
	require.Nil(t, o.err, fmt.Sprintf("unexpected error: %s", o.err))

	stream, err := js.Stream(context.Background(), "edgesync")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	raw, err := stream.GetMsg(context.Background(), uint64(o.md.Offset))
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	assert.Equal(t, "tb_core.7", raw.Subject)
	assert.Equal(t, []byte("payload"), raw.Data)
	assert.Equal(t, key.String(), raw.Header.Get("key"))
	assert.Equal(t, tenant.String(), raw.Header.Get(queue.TenantHeader))
	assert.Equal(t, "activity", raw.Header.Get("type"))
}
