// Package gateway exposes live measurement fan-out over WebSockets.
// Clients open one socket per kit and receive every raw and aggregate
// measurement the bridge accepts for it, starting with the retained
// last readings.
package gateway

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/fanout"
	"github.com/growerlab/kitbridge/pkg/util"
)

// Authorizer decides whether the holder of token may view the kit's
// live measurements.
type Authorizer interface {
	MayView(ctx context.Context, token, kitSerial string) (bool, error)
}

// AllowAll authorizes every viewer. Suitable for deployments where
// access control happens upstream.
type AllowAll struct{}

func (AllowAll) MayView(context.Context, string, string) (bool, error) { return true, nil }

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

// Server upgrades HTTP requests to WebSocket subscriptions on the
// fan-out hub.
type Server struct {
	hub       *fanout.Hub
	auth      Authorizer
	upgrader  websocket.Upgrader
	tlsConfig *tls.Config
	logger    *zap.Logger
}

// NewServer creates a gateway over hub. A nil auth allows everyone.
func NewServer(hub *fanout.Hub, auth Authorizer, logger *zap.Logger) *Server {
	if auth == nil {
		auth = AllowAll{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// UseTLS makes Start serve wss with the certificate at the given
// paths, generating a self-signed pair when neither file exists.
func (s *Server) UseTLS(certFile, keyFile string) error {
	cert, err := util.ServerCertificate(certFile, keyFile)
	if err != nil {
		return err
	}
	s.tlsConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return nil
}

// Handler returns the gateway's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	// Matches "GET /kits/{kitSerial}/updates" by hand; the Go 1.22+
	// ServeMux patterns are unavailable on the Go 1.21 toolchain.
	mux.HandleFunc("/kits/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/kits/")
		kitSerial, tail, ok := strings.Cut(rest, "/")
		if !ok || kitSerial == "" || tail != "updates" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		s.serveUpdates(w, r, kitSerial)
	})
	return mux
}

// rawView is the JSON shape of one raw measurement update.
type rawView struct {
	ID           string  `json:"id"`
	Datetime     uint64  `json:"datetime"`
	Peripheral   int32   `json:"peripheral"`
	QuantityType int32   `json:"quantityType"`
	Value        float64 `json:"value"`
}

type aggregateView struct {
	ID            string             `json:"id"`
	DatetimeStart uint64             `json:"datetimeStart"`
	DatetimeEnd   uint64             `json:"datetimeEnd"`
	Peripheral    int32              `json:"peripheral"`
	QuantityType  int32              `json:"quantityType"`
	Values        map[string]float64 `json:"values"`
}

type updateView struct {
	KitSerial string         `json:"kitSerial"`
	Raw       *rawView       `json:"rawMeasurement,omitempty"`
	Aggregate *aggregateView `json:"aggregateMeasurement,omitempty"`
}

func viewOf(u fanout.Update) updateView {
	view := updateView{KitSerial: u.KitSerial}
	if u.Raw != nil {
		view.Raw = &rawView{
			ID:           u.Raw.ID.String(),
			Datetime:     u.Raw.Datetime,
			Peripheral:   u.Raw.Peripheral,
			QuantityType: u.Raw.QuantityType,
			Value:        u.Raw.Value,
		}
	}
	if u.Aggregate != nil {
		view.Aggregate = &aggregateView{
			ID:            u.Aggregate.ID.String(),
			DatetimeStart: u.Aggregate.DatetimeStart,
			DatetimeEnd:   u.Aggregate.DatetimeEnd,
			Peripheral:    u.Aggregate.Peripheral,
			QuantityType:  u.Aggregate.QuantityType,
			Values:        u.Aggregate.Values,
		}
	}
	return view
}

func (s *Server) serveUpdates(w http.ResponseWriter, r *http.Request, kitSerial string) {
	token := r.URL.Query().Get("token")

	allowed, err := s.auth.MayView(r.Context(), token, kitSerial)
	if err != nil {
		s.logger.Error("Authorization check failed",
			zap.String("kitSerial", kitSerial), zap.Error(err))
		http.Error(w, "authorization check failed", http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	sub := s.hub.Subscribe(kitSerial)
	defer s.hub.Unsubscribe(sub)
	s.logger.Debug("Live update subscriber connected", zap.String("kitSerial", kitSerial))

	// The reader goroutine only services control frames and signals
	// client-initiated close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()
	defer conn.Close()

	for {
		select {
		case <-closed:
			return
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case u, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(viewOf(u)); err != nil {
				s.logger.Debug("Dropping live update subscriber",
					zap.String("kitSerial", kitSerial), zap.Error(err))
				return
			}
		}
	}
}

// Start serves the gateway on addr until ctx is canceled, then shuts
// down gracefully. wg tracks the server goroutine.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup, addr string) {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		TLSConfig:         s.tlsConfig,
		ReadHeaderTimeout: 3 * time.Second,
	}

	serverClosed := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("Starting live update gateway",
			zap.String("addr", addr), zap.Bool("tls", s.tlsConfig != nil))
		var err error
		if s.tlsConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			s.logger.Error("Gateway server error", zap.Error(err))
		}
		close(serverClosed)
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error shutting down gateway", zap.Error(err))
		}

		select {
		case <-serverClosed:
			s.logger.Info("Gateway shutdown complete")
		case <-shutdownCtx.Done():
			s.logger.Warn("Gateway shutdown timed out")
		}
	}()
}
