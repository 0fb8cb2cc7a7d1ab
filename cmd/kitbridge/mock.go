package kitbridge

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/bridge"
	"github.com/growerlab/kitbridge/pkg/config"
	"github.com/growerlab/kitbridge/pkg/rpc"
	"github.com/growerlab/kitbridge/pkg/topic"
	"github.com/growerlab/kitbridge/pkg/wire"
)

var (
	mockSerial       string
	mockInterval     time.Duration
	mockPeripheral   int32
	mockQuantityType int32
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a simulated kit",
	Long: `Connect to the broker as a kit: publish synthetic raw measurements at a
fixed interval and answer RPC requests. Useful for exercising a bridge
without hardware.`,
	RunE: runMock,
}

func init() {
	mockCmd.Flags().StringVar(&mockSerial, "serial", "k-mock", "kit serial to impersonate")
	mockCmd.Flags().DurationVar(&mockInterval, "interval", 2*time.Second, "delay between measurements")
	mockCmd.Flags().Int32Var(&mockPeripheral, "peripheral", 1, "peripheral id to report")
	mockCmd.Flags().Int32Var(&mockQuantityType, "quantity-type", 1, "quantity type to report")
}

func runMock(cmd *cobra.Command, args []string) error {
	session := bridge.NewSession(bridge.SessionOptions{
		Brokers:        cfg.MQTT.Brokers,
		ClientID:       "kit-" + mockSerial,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		KeepAlive:      cfg.MQTT.KeepAlive,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, logger)
	if err := session.Connect(); err != nil {
		return err
	}
	defer session.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := time.Now()

	err := session.Subscribe(topic.Format(mockSerial, topic.ChannelKitRPCRequest),
		func(_ string, payload []byte) {
			answerKitRPC(session, started, payload)
		})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Mock kit running",
		zap.String("serial", mockSerial), zap.Duration("interval", mockInterval))

	ticker := time.NewTicker(mockInterval)
	defer ticker.Stop()

	rawTopic := topic.Format(mockSerial, topic.ChannelRawMeasurement)
	for {
		select {
		case <-sigChan:
			logger.Info("Mock kit stopping")
			return nil
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m := wire.RawMeasurement{
				ID:           uuid.New(),
				Datetime:     uint64(now.UnixMilli()),
				Peripheral:   mockPeripheral,
				QuantityType: mockQuantityType,
				Value:        syntheticValue(now.Sub(started)),
			}
			payload, err := wire.EncodeRawMeasurement(m)
			if err != nil {
				logger.Warn("Failed to encode measurement", zap.Error(err))
				continue
			}
			if err := session.Publish(rawTopic, payload); err != nil {
				logger.Warn("Failed to publish measurement", zap.Error(err))
			}
		}
	}
}

// syntheticValue produces a slow sine around a plausible temperature.
func syntheticValue(elapsed time.Duration) float64 {
	return 21 + 3*math.Sin(elapsed.Seconds()/60)
}

func answerKitRPC(session *bridge.Session, started time.Time, payload []byte) {
	req, err := wire.DecodeKitRequest(payload)
	if err != nil {
		logger.Warn("Undecodable kit RPC request", zap.Error(err))
		return
	}

	resp := wire.Response{ID: req.ID}
	switch req.Method {
	case wire.KitMethodVersion:
		resp.Result = []byte("mock-" + config.Version)
	case wire.KitMethodUptime:
		resp.Result = rpc.EncodeUptime(time.Since(started))
	default:
		resp.Err = &wire.RPCError{Kind: wire.ErrorMethodNotFound}
	}

	encoded, err := wire.EncodeKitResponse(resp)
	if err != nil {
		logger.Warn("Failed to encode RPC response", zap.Error(err))
		return
	}
	if err := session.Publish(topic.Format(mockSerial, topic.ChannelKitRPCResponse), encoded); err != nil {
		logger.Warn("Failed to publish RPC response", zap.Error(err))
	}
}
