package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/melitton/internal/auth"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://meli.test/api"

func setupClient(t *testing.T, secret string) *RESTClient {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(func() { httpmock.DeactivateNonDefault(hc) })
	httpmock.Reset()
	return NewRESTClient(base+"/", hc, secret, logging.Discard())
}

func readJSON(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestPing(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/health",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"OK"}`))

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestListBoxes(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/boxes",
		httpmock.NewStringResponder(http.StatusOK, `[{"id":"b1","name":"A","species":"Jataí",
			"installDate":"2026-01-01","managementHistory":[{"id":"l1","date":"2026-02-01","type":"colheita","quantity":"1L"}]}]`))

	boxes, err := c.ListBoxes(context.Background())
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, "b1", boxes[0].ID)
	require.Len(t, boxes[0].ManagementHistory, 1)
	assert.Equal(t, "1L", boxes[0].ManagementHistory[0].Quantity)
}

func TestCreateBox_StripsClientFields(t *testing.T) {
	c := setupClient(t, "")

	var sent map[string]any
	httpmock.RegisterResponder(http.MethodPost, base+"/boxes", func(req *http.Request) (*http.Response, error) {
		sent = readJSON(t, req)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{
			"id": "srv-1", "name": "A", "managementHistory": []any{},
		})
	})

	out, err := c.CreateBox(context.Background(), models.Box{
		ID: "local-1-ab", Name: "A", SyncState: models.SyncPending,
		ManagementHistory: []models.ManagementLog{{ID: "l1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", out.ID)

	assert.NotContains(t, sent, "id")
	assert.NotContains(t, sent, "syncState")
	assert.NotContains(t, sent, "managementHistory")
	assert.Equal(t, "A", sent["name"])
}

func TestUpdateBox_SendsIDInPath(t *testing.T) {
	c := setupClient(t, "")

	var sent map[string]any
	httpmock.RegisterResponder(http.MethodPut, base+"/boxes/srv-1", func(req *http.Request) (*http.Response, error) {
		sent = readJSON(t, req)
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"id": "srv-1", "name": "B"})
	})

	out, err := c.UpdateBox(context.Background(), models.Box{ID: "srv-1", Name: "B", SyncState: models.SyncPending})
	require.NoError(t, err)
	assert.Equal(t, "B", out.Name)
	assert.Equal(t, "srv-1", sent["id"])
	assert.NotContains(t, sent, "syncState")
	assert.NotContains(t, sent, "managementHistory")
}

func TestAddLog(t *testing.T) {
	c := setupClient(t, "")

	var sent map[string]any
	httpmock.RegisterResponder(http.MethodPost, base+"/boxes/srv-1/logs", func(req *http.Request) (*http.Response, error) {
		sent = readJSON(t, req)
		return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{
			"id": "log-9", "date": "2026-03-01", "type": "inspeção",
		})
	})

	out, err := c.AddLog(context.Background(), "srv-1", models.ManagementLog{
		ID: "local-2-cd", Date: "2026-03-01", Type: models.LogInspection, SyncState: models.SyncPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "log-9", out.ID)
	assert.NotContains(t, sent, "id")
	assert.NotContains(t, sent, "syncState")
}

func TestBaitCalls(t *testing.T) {
	c := setupClient(t, "")
	ctx := context.Background()

	httpmock.RegisterResponder(http.MethodGet, base+"/baits",
		httpmock.NewStringResponder(http.StatusOK, `[{"id":"i1","status":{"state":"ocupada","lastInspection":"2026-01-01"}}]`))
	httpmock.RegisterResponder(http.MethodPost, base+"/baits", func(req *http.Request) (*http.Response, error) {
		assert.NotContains(t, readJSON(t, req), "id")
		return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{"id": "i2"})
	})
	httpmock.RegisterResponder(http.MethodPut, base+"/baits/i2",
		httpmock.NewStringResponder(http.StatusOK, `{"id":"i2","name":"Z"}`))
	httpmock.RegisterResponder(http.MethodDelete, base+"/baits/i2",
		httpmock.NewStringResponder(http.StatusOK, `{"message":"Bait deleted"}`))

	baits, err := c.ListBaits(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BaitOccupied, baits[0].Status.State)

	created, err := c.CreateBait(ctx, models.Bait{ID: "local-3-ef", Name: "Z"})
	require.NoError(t, err)
	assert.Equal(t, "i2", created.ID)

	updated, err := c.UpdateBait(ctx, models.Bait{ID: "i2", Name: "Z"})
	require.NoError(t, err)
	assert.Equal(t, "Z", updated.Name)

	require.NoError(t, c.DeleteBait(ctx, "i2"))
}

func TestDeleteBox_EscapesID(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodDelete, base+"/boxes/caixa%201",
		httpmock.NewStringResponder(http.StatusOK, `{"message":"Box deleted"}`))

	require.NoError(t, c.DeleteBox(context.Background(), "caixa 1"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad request", http.StatusBadRequest, `{"error":"validation error: box name is required"}`, ErrRejected},
		{"unauthorized", http.StatusUnauthorized, `{"error":"missing token"}`, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ``, ErrUnauthorized},
		{"not found", http.StatusNotFound, `{"error":"not found"}`, ErrNotFound},
		{"bad gateway", http.StatusBadGateway, `upstream down`, ErrUnavailable},
		{"unavailable", http.StatusServiceUnavailable, ``, ErrUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, ``, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupClient(t, "")
			httpmock.RegisterResponder(http.MethodGet, base+"/boxes", httpmock.NewStringResponder(tt.status, tt.body))

			_, err := c.ListBoxes(context.Background())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorMapping_OtherStatus(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/baits",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"internal error"}`))

	_, err := c.ListBaits(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "internal error", se.Message)
	assert.Equal(t, "server returned 500: internal error", se.Error())
}

func TestTransportError(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/health",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDeadlineIsUnavailable(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/health",
		httpmock.NewStringResponder(http.StatusOK, `{}`).Delay(200*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Ping(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeError(t *testing.T) {
	c := setupClient(t, "")
	httpmock.RegisterResponder(http.MethodGet, base+"/boxes",
		httpmock.NewStringResponder(http.StatusOK, `<html>`))

	_, err := c.ListBoxes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestBearerToken(t *testing.T) {
	secret := "shared-secret"

	t.Run("minted when secret is set", func(t *testing.T) {
		c := setupClient(t, secret)
		httpmock.RegisterResponder(http.MethodGet, base+"/health", func(req *http.Request) (*http.Response, error) {
			tok, ok := auth.BearerToken(req.Header.Get("Authorization"))
			require.True(t, ok)
			client, err := auth.ParseToken(tok, []byte(secret))
			require.NoError(t, err)
			assert.Equal(t, tokenSubject, client)
			return httpmock.NewStringResponse(http.StatusOK, `{"status":"OK"}`), nil
		})
		require.NoError(t, c.Ping(context.Background()))
	})

	t.Run("absent without secret", func(t *testing.T) {
		c := setupClient(t, "")
		httpmock.RegisterResponder(http.MethodGet, base+"/health", func(req *http.Request) (*http.Response, error) {
			assert.Empty(t, req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})
		require.NoError(t, c.Ping(context.Background()))
	})
}
