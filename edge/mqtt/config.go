// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mqtt

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/absmach/edgesync/pkg/errors"
	"github.com/gofrs/uuid"
	"github.com/pelletier/go-toml"
)

const (
	defPrefix   = "edgesync"
	defDownlink = "downlink"
	defUplink   = "uplink"
	defQoS      = 1
	defTimeout  = 30 * time.Second
	wildcard    = "+"
)

var (
	errOpenConfFile  = errors.New("unable to open configuration file")
	errParseConfFile = errors.New("unable to parse configuration file")
	errInvalidQoS    = errors.New("qos must be 0, 1 or 2")
	errTopic         = errors.New("topic does not match the downlink layout")
)

// Config is the topic layout of the edge link. Edges of a tenant publish to
// <prefix>/<tenant>/<downlink> and receive on <prefix>/<tenant>/<uplink>.
type Config struct {
	Prefix   string `toml:"prefix"`
	Downlink string `toml:"downlink"`
	Uplink   string `toml:"uplink"`
	QoS      int    `toml:"qos"`

	// Timeout bounds broker round trips and the handling of one downlink
	// message.
	Timeout string `toml:"timeout"`

	timeout time.Duration
}

// DefaultConfig returns the layout used when no file is given.
func DefaultConfig() Config {
	return Config{
		Prefix:   defPrefix,
		Downlink: defDownlink,
		Uplink:   defUplink,
		QoS:      defQoS,
		Timeout:  defTimeout.String(),
		timeout:  defTimeout,
	}
}

// LoadConfig reads a TOML layout from path over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errOpenConfFile, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errParseConfFile, err)
	}
	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.QoS < 0 || cfg.QoS > 2 {
		return errors.Wrap(errParseConfFile, errInvalidQoS)
	}
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return errors.Wrap(errParseConfFile, err)
	}
	cfg.timeout = d
	return nil
}

// DownlinkTopic is the subscription covering the downlink of every tenant.
func (cfg Config) DownlinkTopic() string {
	return fmt.Sprintf("%s/%s/%s", cfg.Prefix, wildcard, cfg.Downlink)
}

// UplinkTopic is the topic the edges of tenantID listen on.
func (cfg Config) UplinkTopic(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s", cfg.Prefix, tenantID, cfg.Uplink)
}

// TenantOf extracts the tenant of a downlink topic.
func (cfg Config) TenantOf(topic string) (uuid.UUID, error) {
	tenant := strings.TrimPrefix(topic, cfg.Prefix+"/")
	tenant = strings.TrimSuffix(tenant, "/"+cfg.Downlink)
	if len(tenant) == len(topic) || strings.Contains(tenant, "/") || topic != cfg.Prefix+"/"+tenant+"/"+cfg.Downlink {
		return uuid.Nil, errors.Wrap(errTopic, fmt.Errorf("topic %q", topic))
	}
	id, err := uuid.FromString(tenant)
	if err != nil {
		return uuid.Nil, errors.Wrap(errTopic, err)
	}
	return id, nil
}
