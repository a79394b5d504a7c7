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
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOpts is the broker configuration.
//
// The field names follow mosquitto_sub command-line args.
type MQTTOpts struct {
	Broker    string `json:"broker" yaml:"broker"`
	Port      int    `json:"port,omitempty" yaml:"port,omitempty"`
	ClientId  string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	KeepAlive int    `json:"keepAlive,omitempty" yaml:"keepAlive,omitempty"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`

	WillTopic   string `json:"willTopic,omitempty" yaml:"willTopic,omitempty"`
	WillPayload string `json:"willPayload,omitempty" yaml:"willPayload,omitempty"`
	WillQoS     int    `json:"willQoS,omitempty" yaml:"willQoS,omitempty"`
	WillRetain  bool   `json:"willRetain,omitempty" yaml:"willRetain,omitempty"`

	Reconnect bool `json:"reconnect,omitempty" yaml:"reconnect,omitempty"`
	Clean     bool `json:"clean,omitempty" yaml:"clean,omitempty"`

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint `json:"quiesce,omitempty" yaml:"quiesce,omitempty"`

	QoS byte `json:"qos,omitempty" yaml:"qos,omitempty"`

	CertFilename string `json:"cert,omitempty" yaml:"cert,omitempty"`
	KeyFilename  string `json:"key,omitempty" yaml:"key,omitempty"`
	CAFilename   string `json:"cafile,omitempty" yaml:"cafile,omitempty"`
	Insecure     bool   `json:"insecure,omitempty" yaml:"insecure,omitempty"`
}

// MQTT is a Middleware backed by an MQTT broker.
//
// Incoming payloads are parsed as JSON when possible; otherwise the
// Handler sees the payload as a string.
type MQTT struct {
	Opts MQTTOpts

	client mqtt.Client
}

// NewMQTT makes an MQTT Middleware (without connecting).
func NewMQTT(opts MQTTOpts) *MQTT {
	return &MQTT{
		Opts: opts,
	}
}

// Start connects to the broker.
func (m *MQTT) Start(ctx context.Context) error {
	o := m.Opts

	opts := mqtt.NewClientOptions()

	broker := o.Broker
	if o.Port != 0 {
		broker = fmt.Sprintf("%s:%d", broker, o.Port)
	}
	log.Printf("broker: %s", broker)
	opts.AddBroker(broker)
	opts.SetClientID(o.ClientId)

	keepAlive := o.KeepAlive
	if keepAlive == 0 {
		keepAlive = 600
	}
	opts.SetKeepAlive(time.Second * time.Duration(keepAlive))
	opts.SetPingTimeout(10 * time.Second)

	opts.Username = o.Username
	opts.Password = o.Password
	opts.AutoReconnect = o.Reconnect
	opts.CleanSession = o.Clean

	if o.WillTopic != "" {
		if o.WillPayload == "" {
			return fmt.Errorf("will topic without payload")
		}
		opts.WillEnabled = true
		opts.WillTopic = o.WillTopic
		opts.WillPayload = []byte(o.WillPayload)
		opts.WillRetained = o.WillRetain
		opts.WillQos = byte(o.WillQoS)
	}

	if o.CAFilename != "" || o.KeyFilename != "" || o.Insecure {
		var rootCAs *x509.CertPool
		if rootCAs, _ = x509.SystemCertPool(); rootCAs == nil {
			rootCAs = x509.NewCertPool()
			log.Printf("Including system CA certs")
		}
		if o.CAFilename != "" {
			certs, err := ioutil.ReadFile(o.CAFilename)
			if err != nil {
				return fmt.Errorf("couldn't read '%s': %s", o.CAFilename, err)
			}
			if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
				log.Println("No certs appended, using system certs only")
			}
		}

		var certs []tls.Certificate
		if o.KeyFilename != "" {
			cert, err := tls.LoadX509KeyPair(o.CertFilename, o.KeyFilename)
			if err != nil {
				return err
			}
			certs = []tls.Certificate{cert}
		}

		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: o.Insecure,
			RootCAs:            rootCAs,
			Certificates:       certs,
		})
	}

	m.client = mqtt.NewClient(opts)

	if t := m.client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}

// Stop disconnects from the broker.
func (m *MQTT) Stop(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	quiesce := m.Opts.Quiesce
	if quiesce == 0 {
		quiesce = 100
	}
	m.client.Disconnect(quiesce)
	m.client = nil
	return nil
}

// Subscribe registers a Handler for the given topic (which can
// include MQTT wildcards).
func (m *MQTT) Subscribe(ctx context.Context, topic string, h Handler) error {
	if m.client == nil {
		return fmt.Errorf("not connected")
	}

	f := func(client mqtt.Client, msg mqtt.Message) {
		bs := msg.Payload()
		var x interface{}
		if err := json.Unmarshal(bs, &x); err != nil {
			x = string(bs)
		}
		h(ctx, msg.Topic(), x)
	}

	if t := m.client.Subscribe(topic, m.Opts.QoS, f); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}

// Publish sends a message, which is serialized as JSON unless it's
// already a string or a []byte.
func (m *MQTT) Publish(ctx context.Context, topic string, msg interface{}) error {
	if m.client == nil {
		return fmt.Errorf("not connected")
	}

	var payload interface{}
	switch vv := msg.(type) {
	case string, []byte:
		payload = vv
	default:
		js, err := json.Marshal(&msg)
		if err != nil {
			return err
		}
		payload = js
	}

	if t := m.client.Publish(topic, m.Opts.QoS, false, payload); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}
