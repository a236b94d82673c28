// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package mqtt carries entity data between edges and the cloud over MQTT.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/logger"
	"github.com/absmach/edgesync/pkg/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/uuid"
)

var (
	// ErrConnect indicates that the broker could not be reached in time.
	ErrConnect = errors.New("failed to connect to MQTT broker")

	errSubscribeTimeout   = errors.New("failed to subscribe due to timeout reached")
	errUnsubscribeTimeout = errors.New("failed to unsubscribe due to timeout reached")
	errPublishTimeout     = errors.New("failed to publish due to timeout reached")
	errSubscribed         = errors.New("already subscribed")
	errClosed             = errors.New("link closed")
)

// Link is an edge link over an MQTT broker.
type Link interface {
	edge.Publisher
	edge.Subscriber
}

var _ Link = (*link)(nil)

type link struct {
	client     mqtt.Client
	cfg        Config
	logger     logger.Logger
	mu         sync.Mutex
	subscribed bool
	closed     bool
	wg         sync.WaitGroup
}

// NewLink connects to the broker at url.
func NewLink(url, clientID string, cfg Config, logger logger.Logger) (Link, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := newClient(url, clientID, cfg)
	if err != nil {
		return nil, err
	}
	return &link{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (l *link) Publish(_ context.Context, tenantID uuid.UUID, msg edge.UplinkMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(errors.ErrEncode, err)
	}
	token := l.client.Publish(l.cfg.UplinkTopic(tenantID), byte(l.cfg.QoS), false, data)
	if token.Error() != nil {
		return token.Error()
	}
	if ok := token.WaitTimeout(l.cfg.timeout); !ok {
		return errPublishTimeout
	}
	return token.Error()
}

func (l *link) Subscribe(ctx context.Context, h edge.Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errClosed
	}
	if l.subscribed {
		return errSubscribed
	}

	token := l.client.Subscribe(l.cfg.DownlinkTopic(), byte(l.cfg.QoS), l.handler(ctx, h))
	if token.Error() != nil {
		return token.Error()
	}
	if ok := token.WaitTimeout(l.cfg.timeout); !ok {
		return errSubscribeTimeout
	}
	if err := token.Error(); err != nil {
		return err
	}
	l.subscribed = true
	return nil
}

// Close stops the downlink subscription and waits for in-flight messages
// before disconnecting. Messages delivered after Close are dropped.
func (l *link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	subscribed := l.subscribed
	l.mu.Unlock()

	var err error
	if subscribed {
		token := l.client.Unsubscribe(l.cfg.DownlinkTopic())
		if ok := token.WaitTimeout(l.cfg.timeout); !ok {
			err = errUnsubscribeTimeout
		} else {
			err = token.Error()
		}
	}
	l.wg.Wait()
	l.client.Disconnect(uint(l.cfg.timeout.Milliseconds()))
	return err
}

// track registers an in-flight message unless the link is closed.
func (l *link) track() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.wg.Add(1)
	return true
}

func (l *link) handler(ctx context.Context, h edge.Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		if !l.track() {
			l.logger.Warn(fmt.Sprintf("Dropping downlink message on %s: %s", m.Topic(), errClosed))
			return
		}
		tenantID, err := l.cfg.TenantOf(m.Topic())
		if err != nil {
			l.wg.Done()
			l.logger.Warn(fmt.Sprintf("Dropping downlink message: %s", err))
			return
		}
		var data edge.EntityData
		if err := json.Unmarshal(m.Payload(), &data); err != nil {
			l.wg.Done()
			l.logger.Warn(fmt.Sprintf("Failed to unmarshal downlink message of tenant %s: %s", tenantID, err))
			return
		}

		f := h.Handle(ctx, tenantID, data)
		go func() {
			defer l.wg.Done()
			wctx, cancel := context.WithTimeout(ctx, l.cfg.timeout)
			defer cancel()
			if err := f.Wait(wctx); err != nil {
				l.logger.Warn(fmt.Sprintf("Failed to handle %s entity data of tenant %s: %s", data.EntityType, tenantID, err))
			}
		}()
	}
}

func newClient(address, id string, cfg Config) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(address).
		SetClientID(id).
		SetAutoReconnect(true).
		SetOrderMatters(false)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Error() != nil {
		return nil, token.Error()
	}
	if ok := token.WaitTimeout(cfg.timeout); !ok {
		return nil, ErrConnect
	}
	if token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
