// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gofrs/uuid"
)

// Response is implemented by every endpoint response.
type Response interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

var (
	_ Response = (*entityDataRes)(nil)
	_ Response = (*cloudEventRes)(nil)
)

type entityDataRes struct {
	Status string `json:"status"`
}

func (res entityDataRes) Code() int {
	return http.StatusOK
}

func (res entityDataRes) Headers() map[string]string {
	return map[string]string{}
}

func (res entityDataRes) Empty() bool {
	return false
}

type cloudEventRes struct {
	ID uuid.UUID `json:"id"`
}

func (res cloudEventRes) Code() int {
	return http.StatusCreated
}

func (res cloudEventRes) Headers() map[string]string {
	return map[string]string{
		"Location": "/events/" + res.ID.String(),
	}
}

func (res cloudEventRes) Empty() bool {
	return false
}
