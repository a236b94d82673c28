// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package edgesync

import (
	"encoding/json"
	"net/http"
)

const (
	// Version represents the last edgesync release.
	Version = "0.1.0"

	contentType = "application/health+json"
)

// HealthInfo contains version endpoint response.
type HealthInfo struct {
	// Status contains service status.
	Status string `json:"status"`

	// Version contains current service version.
	Version string `json:"version"`

	// Description contains service description.
	Description string `json:"description"`

	// InstanceID contains the ID of the current service instance.
	InstanceID string `json:"instance_id"`
}

// Health exposes an HTTP handler for retrieving service health.
func Health(service, instanceID string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Content-Type", contentType)

		res := HealthInfo{
			Status:      "pass",
			Version:     Version,
			Description: service + " service",
			InstanceID:  instanceID,
		}

		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(res); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
