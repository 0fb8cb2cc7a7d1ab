package bridge

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/util/rand"
)

// SessionOptions configures the broker connection.
type SessionOptions struct {
	Brokers        []string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

// Session wraps the paho client with the connection settings the
// bridge needs: auto-reconnect, resumed subscriptions, and QoS 1
// publishes.
type Session struct {
	opts   *mqtt.ClientOptions
	client mqtt.Client
	logger *zap.Logger
}

// NewSession creates a broker session. It does not connect; call
// Connect before use.
func NewSession(opts SessionOptions, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	pahoOpts := mqtt.NewClientOptions()
	for _, broker := range opts.Brokers {
		pahoOpts.AddBroker(broker)
	}
	if len(opts.Brokers) == 0 {
		pahoOpts.AddBroker("tcp://127.0.0.1:1883")
	}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("kitbridge-%s", rand.NewName())
	}
	pahoOpts.SetClientID(clientID)

	if opts.Username != "" {
		pahoOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		pahoOpts.SetPassword(opts.Password)
	}
	if opts.KeepAlive > 0 {
		pahoOpts.SetKeepAlive(opts.KeepAlive)
	}
	if opts.ConnectTimeout > 0 {
		pahoOpts.SetConnectTimeout(opts.ConnectTimeout)
	}

	pahoOpts.SetAutoReconnect(true)
	pahoOpts.SetConnectRetry(true)
	pahoOpts.SetResumeSubs(true)
	pahoOpts.SetOrderMatters(false)

	pahoOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("Broker connection lost", zap.Error(err))
	})
	pahoOpts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("clientId", clientID))
	})

	return &Session{opts: pahoOpts, logger: logger}
}

// Connect establishes a connection to the MQTT broker.
func (s *Session) Connect() error {
	s.client = mqtt.NewClient(s.opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("broker connection error: %w", token.Error())
	}
	return nil
}

// Publish sends a message at QoS 1 without the retained flag.
func (s *Session) Publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error("Publish error", zap.Error(err), zap.String("topic", topic))
		return err
	}
	return nil
}

// Subscribe registers a handler for messages matching the filter.
func (s *Session) Subscribe(filter string, handler func(topic string, payload []byte)) error {
	token := s.client.Subscribe(filter, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error("Subscribe error", zap.Error(err), zap.String("filter", filter))
		return fmt.Errorf("subscribe error: %w", err)
	}
	s.logger.Debug("Subscribed", zap.String("filter", filter))
	return nil
}

// Disconnect closes the connection to the MQTT broker.
func (s *Session) Disconnect() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	s.logger.Info("Disconnected from MQTT broker")
}
