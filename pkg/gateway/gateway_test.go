package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/growerlab/kitbridge/pkg/fanout"
	"github.com/growerlab/kitbridge/pkg/wire"
)

type tokenAuth struct {
	token string
}

func (a tokenAuth) MayView(_ context.Context, token, _ string) (bool, error) {
	return token == a.token, nil
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, path), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestUpdatesStreamedToClient(t *testing.T) {
	hub := fanout.NewHub(4, zaptest.NewLogger(t))
	server := httptest.NewServer(NewServer(hub, nil, zaptest.NewLogger(t)).Handler())
	defer server.Close()

	conn := dial(t, server, "/kits/k1/updates")

	m := wire.RawMeasurement{
		ID:           uuid.New(),
		Datetime:     1700000000000,
		Peripheral:   3,
		QuantityType: 7,
		Value:        21.5,
	}
	// The subscription registers during the upgrade handshake, but give
	// the handler a moment to reach its select loop.
	require.Eventually(t, func() bool {
		return hub.Subscribers("k1") == 1
	}, time.Second, 5*time.Millisecond)
	hub.PublishRaw("k1", m)

	var view struct {
		KitSerial string `json:"kitSerial"`
		Raw       *struct {
			ID           string  `json:"id"`
			Datetime     uint64  `json:"datetime"`
			Peripheral   int32   `json:"peripheral"`
			QuantityType int32   `json:"quantityType"`
			Value        float64 `json:"value"`
		} `json:"rawMeasurement"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&view))

	assert.Equal(t, "k1", view.KitSerial)
	require.NotNil(t, view.Raw)
	assert.Equal(t, m.ID.String(), view.Raw.ID)
	assert.Equal(t, uint64(1700000000000), view.Raw.Datetime)
	assert.Equal(t, 21.5, view.Raw.Value)
}

func TestRetainedReadingReplayedOnConnect(t *testing.T) {
	hub := fanout.NewHub(4, zaptest.NewLogger(t))
	server := httptest.NewServer(NewServer(hub, nil, zaptest.NewLogger(t)).Handler())
	defer server.Close()

	hub.PublishRaw("k1", wire.RawMeasurement{
		ID: uuid.New(), Datetime: 1700000000000, Peripheral: 3, QuantityType: 7, Value: 20.1,
	})

	conn := dial(t, server, "/kits/k1/updates")

	var view struct {
		Raw *struct {
			Value float64 `json:"value"`
		} `json:"rawMeasurement"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&view))
	require.NotNil(t, view.Raw)
	assert.Equal(t, 20.1, view.Raw.Value)
}

func TestUnauthorizedViewerRejected(t *testing.T) {
	hub := fanout.NewHub(4, zaptest.NewLogger(t))
	server := httptest.NewServer(NewServer(hub, tokenAuth{token: "secret"}, zaptest.NewLogger(t)).Handler())
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/kits/k1/updates?token=wrong"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, server, "/kits/k1/updates?token=secret")
	require.Eventually(t, func() bool {
		return hub.Subscribers("k1") == 1
	}, time.Second, 5*time.Millisecond)
	conn.Close()
}

func TestSubscriptionReleasedOnDisconnect(t *testing.T) {
	hub := fanout.NewHub(4, zaptest.NewLogger(t))
	server := httptest.NewServer(NewServer(hub, nil, zaptest.NewLogger(t)).Handler())
	defer server.Close()

	conn := dial(t, server, "/kits/k1/updates")
	require.Eventually(t, func() bool {
		return hub.Subscribers("k1") == 1
	}, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.Subscribers("k1") == 0
	}, time.Second, 5*time.Millisecond)
}
