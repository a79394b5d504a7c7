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

package pubsub

import (
	"context"
	"sync"
)

// Mem is an in-process Middleware.
//
// Publish dispatches synchronously to subscribers in the publishing
// goroutine.  Topic matching is exact.  Mem is mostly useful for
// tests and for wiring components within a single process.
type Mem struct {
	sync.Mutex

	subs map[string][]Handler
}

// NewMem makes an in-process Middleware.
func NewMem() *Mem {
	return &Mem{
		subs: make(map[string][]Handler, 8),
	}
}

func (m *Mem) Start(ctx context.Context) error {
	return nil
}

func (m *Mem) Stop(ctx context.Context) error {
	return nil
}

func (m *Mem) Subscribe(ctx context.Context, topic string, h Handler) error {
	m.Lock()
	m.subs[topic] = append(m.subs[topic], h)
	m.Unlock()
	return nil
}

func (m *Mem) Publish(ctx context.Context, topic string, msg interface{}) error {
	m.Lock()
	hs := make([]Handler, len(m.subs[topic]))
	copy(hs, m.subs[topic])
	m.Unlock()

	for _, h := range hs {
		h(ctx, topic, msg)
	}

	return nil
}
