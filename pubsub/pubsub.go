/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pubsub couples expression trees to message brokers.
//
// A Middleware provides topic-based IO.  For example, an
// implementation could couple a host to an MQTT broker or a WebSocket
// server.  A Monitor subscribes to a topic and caches the last
// message it heard, and a host Ticks monitors between evaluations so
// a tree sees a consistent snapshot.
package pubsub

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Comcast/rove/replay"

	"github.com/gorhill/cronexpr"
)

// Handler processes one message heard on a topic.
type Handler func(ctx context.Context, topic string, msg interface{})

// Middleware provides topic-based message input and output.
type Middleware interface {
	// Start initializes the Middleware.
	Start(context.Context) error

	// Subscribe registers a Handler for the given topic.
	Subscribe(ctx context.Context, topic string, h Handler) error

	// Publish sends a message to the given topic.
	Publish(ctx context.Context, topic string, msg interface{}) error

	// Stop shuts down the Middleware.
	Stop(context.Context) error
}

// Monitor subscribes to a topic and caches the last message heard.
//
// The cache has two layers.  Incoming messages land in the "last"
// layer as they arrive.  Tick copies "last" to the "current" layer,
// which is what Current and the monitor's Seq expose.  A host that
// Ticks its monitors before each evaluation gets a snapshot that
// can't change mid-evaluation.
type Monitor struct {
	// Topic is the subscribed topic.
	Topic string

	sync.Mutex

	last    interface{}
	haveMsg bool
	current interface{}
	haveCur bool

	seq *replay.Seq
}

// NewMonitor subscribes to the given topic.
func NewMonitor(ctx context.Context, m Middleware, topic string) (*Monitor, error) {
	mon := &Monitor{
		Topic: topic,
		seq:   replay.NewSeq(nil),
	}
	if err := m.Subscribe(ctx, topic, mon.hear); err != nil {
		return nil, err
	}
	return mon, nil
}

func (mon *Monitor) hear(ctx context.Context, topic string, msg interface{}) {
	mon.Lock()
	mon.last = msg
	mon.haveMsg = true
	mon.Unlock()
}

// Tick promotes the last message heard to the current snapshot.
//
// Returns true if a current snapshot is now available.
func (mon *Monitor) Tick() bool {
	mon.Lock()
	defer mon.Unlock()

	mon.current = mon.last
	mon.haveCur = mon.haveMsg
	if mon.haveCur {
		mon.seq.SetSource(replay.Slice([]interface{}{mon.current}))
	} else {
		mon.seq.SetSource(nil)
	}

	return mon.haveCur
}

// Current returns the current snapshot (if any).
func (mon *Monitor) Current() (interface{}, bool) {
	mon.Lock()
	defer mon.Unlock()
	return mon.current, mon.haveCur
}

// Reset forgets both the last message and the current snapshot.
func (mon *Monitor) Reset() {
	mon.Lock()
	defer mon.Unlock()

	mon.last = nil
	mon.haveMsg = false
	mon.current = nil
	mon.haveCur = false
	mon.seq.SetSource(nil)
}

// Seq exposes the current snapshot as a replayable sequence.
//
// The sequence has zero elements before the first productive Tick and
// one element after.  Build a variable over this Seq to give a tree a
// view of the monitor's topic.
func (mon *Monitor) Seq() *replay.Seq {
	return mon.seq
}

// Publisher sends messages to a fixed topic.
type Publisher struct {
	Topic string

	m Middleware
}

// NewPublisher makes a Publisher for the given topic.
func NewPublisher(m Middleware, topic string) *Publisher {
	return &Publisher{
		Topic: topic,
		m:     m,
	}
}

// Publish sends one message.
func (p *Publisher) Publish(ctx context.Context, msg interface{}) error {
	return p.m.Publish(ctx, p.Topic, msg)
}

// PublishOnStart publishes the given message and then returns the
// Publisher for subsequent use.
func PublishOnStart(ctx context.Context, m Middleware, topic string, msg interface{}) (*Publisher, error) {
	p := NewPublisher(m, topic)
	if msg != nil {
		if err := p.Publish(ctx, msg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Ticker calls a function on a cron schedule.
type Ticker struct {
	// Expr is the compiled cron expression.
	Expr *cronexpr.Expression

	// F is called at each scheduled time.
	F func(ctx context.Context, t time.Time)
}

// NewTicker parses the given cron expression.
func NewTicker(schedule string, f func(ctx context.Context, t time.Time)) (*Ticker, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, err
	}
	return &Ticker{
		Expr: expr,
		F:    f,
	}, nil
}

// Next returns the next scheduled time after t.
func (tk *Ticker) Next(t time.Time) time.Time {
	return tk.Expr.Next(t)
}

// Run calls F at each scheduled time until the context is done or the
// schedule is exhausted.
func (tk *Ticker) Run(ctx context.Context) {
	for {
		next := tk.Next(time.Now())
		if next.IsZero() {
			log.Printf("Ticker schedule exhausted")
			return
		}
		select {
		case <-ctx.Done():
			return
		case t := <-time.After(next.Sub(time.Now())):
			tk.F(ctx, t)
		}
	}
}
