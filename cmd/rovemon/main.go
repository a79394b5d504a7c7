/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package main is a single-plan process that feeds a plan from an
// MQTT broker.
//
// Each -m NAME=TOPIC flag attaches a topic monitor to the plan's
// external slot NAME.  On every tick (a cron schedule or a plain
// interval), the monitors promote the last message they heard to a
// snapshot, the plan is evaluated, and the results go out as JSON on
// the -pub topic.
//
// The command line args follow those for mosquitto_sub.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"strings"
	"time"

	"github.com/Comcast/rove/core"
	"github.com/Comcast/rove/interpreters"
	"github.com/Comcast/rove/plan"
	"github.com/Comcast/rove/pubsub"
	"github.com/Comcast/rove/util"
)

type mappings map[string]string

func (ms mappings) String() string {
	acc := make([]string, 0, len(ms))
	for name, topic := range ms {
		acc = append(acc, name+"="+topic)
	}
	return strings.Join(acc, ",")
}

func (ms mappings) Set(s string) error {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("'%s' isn't NAME=TOPIC", s)
	}
	ms[parts[0]] = parts[1]
	return nil
}

func main() {

	var (
		// Follow mosquitto_sub command line args.

		broker    = flag.String("h", "tcp://localhost", "Broker hostname")
		clientId  = flag.String("i", "", "Client id")
		port      = flag.Int("p", 1883, "Broker port")
		keepAlive = flag.Int("k", 600, "Keep-alive in seconds")
		userName  = flag.String("u", "", "Username")
		password  = flag.String("P", "", "Password")
		reconnect = flag.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean     = flag.Bool("c", true, "Clean session")
		qos       = flag.Int("q", 0, "QoS")

		certFilename = flag.String("cert", "", "Optional cert filename")
		keyFilename  = flag.String("key", "", "Optional key filename")
		insecure     = flag.Bool("insecure", false, "Skip broker cert checking")
		caFilename   = flag.String("cafile", "", "Optional CA cert filename")

		planFilename = flag.String("plan", "", "plan filename (YAML)")
		outTopic     = flag.String("pub", "results", "topic for out-bound results")
		schedule     = flag.String("cron", "", "cron schedule for evaluations")
		every        = flag.Duration("every", time.Second, "evaluation interval (if no -cron)")
		validOnly    = flag.Bool("valid-only", true, "only publish valid results")
		verbose      = flag.Bool("v", false, "verbosity")

		monitored = make(mappings)
	)

	flag.Var(monitored, "m", "NAME=TOPIC monitor mapping (repeatable)")

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bs, err := ioutil.ReadFile(*planFilename)
	if err != nil {
		log.Fatal(err)
	}
	p, err := plan.Parse(bs)
	if err != nil {
		log.Fatal(err)
	}

	is := interpreters.Standard()
	guardInterpreters := make(map[string]plan.GuardInterpreter, len(is))
	for name, i := range is {
		guardInterpreters[name] = i
	}

	c, err := p.Compile(ctx, plan.BaseFactories(), guardInterpreters)
	if err != nil {
		log.Fatal(err)
	}

	m := pubsub.NewMQTT(pubsub.MQTTOpts{
		Broker:       *broker,
		Port:         *port,
		ClientId:     *clientId,
		KeepAlive:    *keepAlive,
		Username:     *userName,
		Password:     *password,
		Reconnect:    *reconnect,
		Clean:        *clean,
		QoS:          byte(*qos),
		CertFilename: *certFilename,
		KeyFilename:  *keyFilename,
		CAFilename:   *caFilename,
		Insecure:     *insecure,
	})

	if err = m.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer m.Stop(ctx)

	// Attach a monitor-backed variable at each mapped external
	// slot.
	monitors := make([]*pubsub.Monitor, 0, len(monitored))
	for name, topic := range monitored {
		mon, err := pubsub.NewMonitor(ctx, m, topic)
		if err != nil {
			log.Fatal(err)
		}
		monitors = append(monitors, mon)

		v := core.NewVariable(name, mon.Seq())
		if err = attach(c, name, v); err != nil {
			log.Fatal(err)
		}
		util.Logf("monitoring %s as '%s'", topic, name)
	}

	out := pubsub.NewPublisher(m, *outTopic)

	evaluate := func(ctx context.Context, at time.Time) {
		for _, mon := range monitors {
			mon.Tick()
		}

		rs := c.Root.Evaluate(ctx, core.NewBindings())
		for {
			r, err := rs.Next()
			if err != nil {
				log.Printf("evaluation error %s", err)
				return
			}
			if r == nil {
				return
			}
			if *validOnly && !r.Valid {
				continue
			}

			msg := map[string]interface{}{
				"bindings": r.Bs.Named(c.Root),
				"valid":    r.Valid,
				"at":       at.UTC().Format(time.RFC3339Nano),
			}
			if err = out.Publish(ctx, msg); err != nil {
				log.Printf("publish error %s", err)
			}
		}
	}

	if *schedule != "" {
		tk, err := pubsub.NewTicker(*schedule, evaluate)
		if err != nil {
			log.Fatal(err)
		}
		tk.Run(ctx)
		return
	}

	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			evaluate(ctx, t)
		}
	}
}

// attach replaces the named external slot with the given node.
func attach(c *plan.Compiled, name string, n core.Node) error {
	slot, have := c.Nodes[name]
	if !have {
		return fmt.Errorf("no node '%s'", name)
	}
	if _, is := slot.(*core.External); !is {
		return fmt.Errorf("node '%s' isn't an external slot", name)
	}

	if c.Root == slot {
		c.Root = n
		c.Nodes[name] = n
		return nil
	}

	replaced := false
	err := core.Walk(c.Root, func(parent core.Node) error {
		for _, child := range parent.Children() {
			if child == slot {
				if err := parent.ReplaceChild(slot, n); err != nil {
					return err
				}
				replaced = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !replaced {
		return fmt.Errorf("'%s' isn't in the tree", name)
	}

	c.Nodes[name] = n

	return nil
}
