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
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// wsEnvelope is the wire format for WebSocket messages.
type wsEnvelope struct {
	Topic string      `json:"topic"`
	Msg   interface{} `json:"msg"`
}

// WebSocket is a Middleware backed by a WebSocket server.
//
// Each message on the wire is a JSON object with "topic" and "msg"
// properties.  Messages without a topic are dropped (with a
// warning).  Topic matching is exact.
type WebSocket struct {
	// URL is the target WebSocket server.
	URL string

	sync.Mutex

	subs map[string][]Handler
	conn *websocket.Conn
}

// NewWebSocket makes a WebSocket Middleware (without connecting).
func NewWebSocket(url string) *WebSocket {
	return &WebSocket{
		URL:  url,
		subs: make(map[string][]Handler, 8),
	}
}

// Start creates the WebSocket session and starts reading from it.
func (w *WebSocket) Start(ctx context.Context) error {
	u, err := url.Parse(w.URL)
	if err != nil {
		return err
	}

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	w.conn = conn

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, bs, err := conn.ReadMessage()
			if err != nil {
				log.Printf("WebSocket.Start ReadMessage error %s", err)
				return
			}
			if len(bs) == 0 {
				continue
			}

			var env wsEnvelope
			if err = json.Unmarshal(bs, &env); err != nil {
				log.Printf("WebSocket.Start Unmarshal error %s on %s", err, bs)
				continue
			}
			if env.Topic == "" {
				log.Printf("WebSocket.Start dropping topicless %s", bs)
				continue
			}

			w.Lock()
			hs := make([]Handler, len(w.subs[env.Topic]))
			copy(hs, w.subs[env.Topic])
			w.Unlock()

			for _, h := range hs {
				h(ctx, env.Topic, env.Msg)
			}
		}
	}()

	return nil
}

// Stop closes the connection.
func (w *WebSocket) Stop(ctx context.Context) error {
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *WebSocket) Subscribe(ctx context.Context, topic string, h Handler) error {
	w.Lock()
	w.subs[topic] = append(w.subs[topic], h)
	w.Unlock()
	return nil
}

func (w *WebSocket) Publish(ctx context.Context, topic string, msg interface{}) error {
	if w.conn == nil {
		return fmt.Errorf("not connected")
	}

	js, err := json.Marshal(&wsEnvelope{
		Topic: topic,
		Msg:   msg,
	})
	if err != nil {
		return err
	}

	// Gorilla websocket connections support one concurrent writer.
	w.Lock()
	defer w.Unlock()

	return w.conn.WriteMessage(websocket.TextMessage, js)
}
