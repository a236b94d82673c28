// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/absmach/edgesync/api"
	"github.com/absmach/edgesync/edge"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/pkg/future"
	pkguuid "github.com/absmach/edgesync/pkg/uuid"
	tmocks "github.com/absmach/edgesync/telemetry/mocks"
	"github.com/absmach/edgesync/uplink"
	umocks "github.com/absmach/edgesync/uplink/mocks"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var tenantID = uuid.Must(uuid.NewV4())

type testRequest struct {
	client      *http.Client
	method      string
	url         string
	contentType string
	body        io.Reader
}

func (tr testRequest) make() (*http.Response, error) {
	req, err := http.NewRequest(tr.method, tr.url, tr.body)
	if err != nil {
		return nil, err
	}
	if tr.contentType != "" {
		req.Header.Set("Content-Type", tr.contentType)
	}
	return tr.client.Do(req)
}

func newServer() (*httptest.Server, *tmocks.Service, *umocks.EventRepository) {
	svc := new(tmocks.Service)
	repo := new(umocks.EventRepository)
	mux := api.MakeHandler(svc, repo, pkguuid.NewMock(), "edgesync", "test")
	return httptest.NewServer(mux), svc, repo
}

func TestHandleEntityData(t *testing.T) {
	ts, svc, _ := newServer()
	defer ts.Close()

	data := edge.EntityData{
		EntityType:       "DEVICE",
		EntityIDMSB:      1,
		EntityIDLSB:      2,
		PostTelemetryMsg: &edge.PostTelemetryMsg{TsKvList: []edge.TsKvList{{Ts: 1, Kv: []edge.KeyValue{{Key: "t", Type: edge.LongV, LongV: 1}}}}},
	}
	body, err := json.Marshal(data)
	require.Nil(t, err)

	cases := []struct {
		desc        string
		tenant      string
		contentType string
		body        string
		result      *future.Future
		status      int
	}{
		{desc: "handle entity data", tenant: tenantID.String(), contentType: api.ContentType, body: string(body), result: future.Succeeded(), status: http.StatusOK},
		{desc: "handle entity data with failed dispatch", tenant: tenantID.String(), contentType: api.ContentType, body: string(body), result: future.Failed(errors.Wrap(errors.ErrDispatch, assert.AnError)), status: http.StatusServiceUnavailable},
		{desc: "handle undecodable entity data", tenant: tenantID.String(), contentType: api.ContentType, body: string(body), result: future.Failed(errors.ErrDecode), status: http.StatusBadRequest},
		{desc: "handle entity data with invalid tenant", tenant: "tenant", contentType: api.ContentType, body: string(body), status: http.StatusBadRequest},
		{desc: "handle entity data without content type", tenant: tenantID.String(), body: string(body), status: http.StatusUnsupportedMediaType},
		{desc: "handle malformed entity data", tenant: tenantID.String(), contentType: api.ContentType, body: "{", status: http.StatusBadRequest},
		{desc: "handle entity data without type", tenant: tenantID.String(), contentType: api.ContentType, body: "{}", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			if tc.result != nil {
				svc.On("Handle", mock.Anything, tenantID, data).Return(tc.result).Once()
			}
			req := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         fmt.Sprintf("%s/tenants/%s/entity-data", ts.URL, tc.tenant),
				contentType: tc.contentType,
				body:        strings.NewReader(tc.body),
			}
			res, err := req.make()
			require.Nil(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
		})
	}
}

func TestSaveCloudEvent(t *testing.T) {
	ts, _, repo := newServer()
	defer ts.Close()

	entityID := uuid.Must(uuid.NewV4())
	valid := fmt.Sprintf(`{"type":"DEVICE","action":"ATTRIBUTES_UPDATED","entity_id":"%s","body":{"kv":{"a":1},"scope":"SERVER_SCOPE"}}`, entityID)

	cases := []struct {
		desc   string
		body   string
		save   bool
		err    error
		status int
	}{
		{desc: "save cloud event", body: valid, save: true, status: http.StatusCreated},
		{desc: "save conflicting cloud event", body: valid, save: true, err: errors.ErrConflict, status: http.StatusConflict},
		{desc: "save cloud event with unknown type", body: fmt.Sprintf(`{"type":"WIDGET","action":"ADDED","entity_id":"%s"}`, entityID), status: http.StatusBadRequest},
		{desc: "save cloud event with unknown action", body: fmt.Sprintf(`{"type":"DEVICE","action":"EXPLODED","entity_id":"%s"}`, entityID), status: http.StatusBadRequest},
		{desc: "save cloud event without entity", body: `{"type":"DEVICE","action":"ADDED"}`, status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			if tc.save {
				repo.On("Save", mock.Anything, mock.MatchedBy(func(ev uplink.CloudEvent) bool {
					return ev.TenantID == tenantID && ev.EntityID == entityID && ev.Action == uplink.AttributesUpdated && ev.ID != uuid.Nil
				})).Return(tc.err).Once()
			}
			req := testRequest{
				client:      ts.Client(),
				method:      http.MethodPost,
				url:         fmt.Sprintf("%s/tenants/%s/events", ts.URL, tenantID),
				contentType: api.ContentType,
				body:        strings.NewReader(tc.body),
			}
			res, err := req.make()
			require.Nil(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
			if tc.status == http.StatusCreated {
				assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/events/"))
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ts, _, _ := newServer()
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/health")
	require.Nil(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var info struct {
		Status string `json:"status"`
	}
	require.Nil(t, json.NewDecoder(res.Body).Decode(&info))
	assert.Equal(t, "pass", info.Status)
}
