/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	amqpwire "github.com/jjudge-oj/amqpwire"
	"github.com/jjudge-oj/amqpwire/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// consumeCmd declares the demo queue, starts a consumer, and prints every
// delivery until interrupted - exercising Channel.Watch and the content
// reassembly path (method -> header -> body -> Delivery).
var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume and print messages from the demo queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		u, err := amqpwire.ParseURI(cfg.URL)
		if err != nil {
			return fmt.Errorf("parse AMQP_URL: %w", err)
		}

		zlog, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer zlog.Sync()

		conn, err := amqpwire.Dial(u.Addr(), amqpwire.Config{
			VirtualHost:  cfg.VirtualHost,
			ChannelMax:   uint16(cfg.ChannelMax),
			FrameSizeMax: uint32(cfg.FrameSizeMax),
			Heartbeat:    cfg.Heartbeat,
			SASL:         []amqpwire.Authentication{amqpwire.PlainAuth(u.Username, u.Password)},
			Logger:       amqpwire.NewZapLogger(zlog),
		})
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		defer conn.Close(nil)

		ch, err := conn.Channel(amqpwire.PriorityDefault)
		if err != nil {
			return fmt.Errorf("open channel: %w", err)
		}

		if _, err := ch.SendSync(&amqpwire.QueueDeclare{
			Queue:   cfg.Queue,
			Durable: cfg.Durable,
		}, amqpwire.PriorityControl); err != nil {
			return fmt.Errorf("declare queue: %w", err)
		}

		if _, err := ch.SendSync(&amqpwire.BasicQos{PrefetchCount: uint16(cfg.PrefetchCount)}, amqpwire.PriorityControl); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}

		consumerTag := "amqpwire-" + uuid.New().String()
		deliveries := make(chan amqpwire.Delivery, 16)
		ch.Watch(amqpwire.MatchConsumerTag(consumerTag), deliveries)

		if _, err := ch.SendSync(&amqpwire.BasicConsume{
			Queue:       cfg.Queue,
			ConsumerTag: consumerTag,
		}, amqpwire.PriorityControl); err != nil {
			return fmt.Errorf("consume: %w", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		fmt.Fprintf(os.Stdout, "consuming from %q, ctrl-c to stop\n", cfg.Queue)
		for {
			select {
			case d := <-deliveries:
				deliver, ok := d.Method.(*amqpwire.BasicDeliver)
				if !ok {
					continue
				}
				fmt.Fprintf(os.Stdout, "delivery tag=%d routing-key=%s body=%q\n",
					deliver.DeliveryTag, deliver.RoutingKey, d.Body)
				ch.Send(&amqpwire.BasicAck{DeliveryTag: deliver.DeliveryTag}, nil, nil, amqpwire.PriorityControl)
			case <-sigCh:
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
