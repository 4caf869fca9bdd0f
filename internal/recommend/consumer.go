// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package recommend

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/signals"
)

// Consumer subscribes to signal-store change events and schedules
// debounced recomputes on the engine for the identity each event names.
// It implements suture.Service.
type Consumer struct {
	subscriber message.Subscriber
	engine     *Engine
	logger     zerolog.Logger
}

// NewConsumer creates a change-event consumer for the engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(subscriber message.Subscriber, engine *Engine, logger zerolog.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		engine:     engine,
		logger:     logger.With().Str("component", "recommend-consumer").Logger(),
	}
}

// Serve implements suture.Service. It blocks until the context is
// cancelled, scheduling a recompute for every change event received.
func (c *Consumer) Serve(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, signals.TopicChanged)
	if err != nil {
		return err
	}

	c.logger.Info().Str("topic", signals.TopicChanged).Msg("consuming signal changes")

	for msg := range msgs {
		ev, err := signals.DecodeChangeEvent(msg)
		if err != nil {
			c.logger.Warn().Err(err).Msg("undecodable change event dropped")
			msg.Ack()
			continue
		}

		c.logger.Debug().
			Str("kind", ev.Kind).
			Str("identity", ev.Identity).
			Msg("signal change received")
		c.engine.ScheduleRecompute(ev.Identity)
		msg.Ack()
	}

	c.engine.Stop()
	return ctx.Err()
}
