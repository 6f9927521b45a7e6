package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-booking/internal/core/events"
	"github.com/frahmantamala/travel-booking/internal/queue"
	"github.com/frahmantamala/travel-booking/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample payment events to check the Kafka bridge configuration.`,
}

var (
	eventTxRef  string
	eventAmount string
)

var publishEventCmd = &cobra.Command{
	Use:       "publish [payment.initiated|payment.failed]",
	Short:     "Publish a sample payment event",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{events.EventTypePaymentInitiated, events.EventTypePaymentFailed},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

func publishTestEvent(ctx context.Context, eventType string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled in config")
	}

	amount, err := decimal.NewFromString(eventAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}

	log := logger.LoggerWrapper()
	bus := events.NewEventBus(log)
	bridge := queue.NewBridge(queue.NewWriter(cfg.Kafka.BrokerList(), cfg.Kafka.Topic), log)
	defer bridge.Close()
	bridge.Register(bus)

	var event events.Event
	switch eventType {
	case events.EventTypePaymentInitiated:
		event = events.NewPaymentInitiatedEvent(eventTxRef, "BK-SAMPLE", amount, cfg.Payment.Currency, "https://checkout.example/"+eventTxRef)
	default:
		event = events.NewPaymentFailedEvent(eventTxRef, "BK-SAMPLE", amount, "sample failure")
	}

	log.Info("publishing test event", "event_type", eventType, "event_id", event.EventID(), "topic", cfg.Kafka.Topic)

	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := bus.PublishSync(pubCtx, event); err != nil {
		return err
	}

	log.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventTxRef, "tx-ref", fmt.Sprintf("TX-sample-%d", time.Now().Unix()), "transaction id used as the message key")
	publishEventCmd.Flags().StringVar(&eventAmount, "amount", "100.00", "event amount")

	eventCmd.AddCommand(publishEventCmd)
}
