package kitbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/bridge"
	"github.com/growerlab/kitbridge/pkg/rpc"
	"github.com/growerlab/kitbridge/pkg/topic"
	"github.com/growerlab/kitbridge/pkg/wire"
)

var callCmd = &cobra.Command{
	Use:   "call <kit-serial> <version|uptime>",
	Short: "Issue an RPC call to a kit",
	Long:  `Send a single RPC request to a kit over the broker and print its reply.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	kitSerial, method := args[0], args[1]

	session := bridge.NewSession(bridge.SessionOptions{
		Brokers:        cfg.MQTT.Brokers,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, logger)
	if err := session.Connect(); err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer session.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table := rpc.NewTable(logger)
	go table.SweepLoop(ctx)

	err := session.Subscribe(topic.Format(kitSerial, topic.ChannelKitRPCResponse),
		func(_ string, payload []byte) {
			resp, err := wire.DecodeKitResponse(payload)
			if err != nil {
				logger.Warn("Undecodable kit RPC response", zap.Error(err))
				return
			}
			table.Resolve(kitSerial, resp.ID, rpc.Outcome{Response: resp})
		})
	if err != nil {
		return err
	}

	client := rpc.NewKitClient(table, session, cfg.RPC.Timeout, logger)

	switch method {
	case "version":
		version, err := client.Version(ctx, kitSerial)
		if err != nil {
			return err
		}
		fmt.Println(version)
	case "uptime":
		uptime, err := client.Uptime(ctx, kitSerial)
		if err != nil {
			return err
		}
		fmt.Println(uptime.Round(time.Second))
	default:
		return fmt.Errorf("unknown method %q (want version or uptime)", method)
	}

	return nil
}
