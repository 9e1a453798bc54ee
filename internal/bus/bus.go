/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bus is the typed mediator connecting the canvas controller, the
// panels and the toolbar. It is constructed by the composition root and
// injected into every participant.
//
// Dispatch is synchronous and strictly FIFO: an event published from inside a
// handler is queued and delivered after every handler of the current event
// has returned. A panicking handler is recovered and logged; the remaining
// handlers still run.
package bus

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	applog "pagebuilder/internal/log"
)

type handler struct {
	id uint64
	fn func(Event)
}

// Bus delivers events to subscribers by topic.
type Bus struct {
	log *slog.Logger

	mu          sync.Mutex
	nextID      uint64
	byTopic     map[string][]handler
	all         []handler
	queue       []Event
	dispatching bool
}

// New returns an empty bus. A nil logger uses the application logger.
func New(l *slog.Logger) *Bus {
	if l == nil {
		l = applog.WithComponent("bus")
	}
	return &Bus{log: l, byTopic: make(map[string][]handler)}
}

// Subscribe registers fn for events of type T and returns a function that
// removes the subscription. Handlers run in subscription order.
func Subscribe[T Event](b *Bus, fn func(T)) (cancel func()) {
	var zero T
	topic := zero.Topic()
	return b.add(topic, func(e Event) {
		if v, ok := e.(T); ok {
			fn(v)
		}
	})
}

// SubscribeAll registers fn for every event, after the topic handlers.
func (b *Bus) SubscribeAll(fn func(Event)) (cancel func()) {
	return b.add("", fn)
}

func (b *Bus) add(topic string, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	h := handler{id: b.nextID, fn: fn}
	if topic == "" {
		b.all = append(b.all, h)
	} else {
		b.byTopic[topic] = append(b.byTopic[topic], h)
	}
	var once sync.Once
	return func() { once.Do(func() { b.remove(topic, h.id) }) }
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drop := func(hs []handler) []handler {
		out := hs[:0:0]
		for _, h := range hs {
			if h.id != id {
				out = append(out, h)
			}
		}
		return out
	}
	if topic == "" {
		b.all = drop(b.all)
		return
	}
	b.byTopic[topic] = drop(b.byTopic[topic])
	if len(b.byTopic[topic]) == 0 {
		delete(b.byTopic, topic)
	}
}

// Publish queues e and, unless a dispatch is already running, delivers the
// queue until it is empty.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		hs := make([]handler, 0, len(b.byTopic[next.Topic()])+len(b.all))
		hs = append(hs, b.byTopic[next.Topic()]...)
		hs = append(hs, b.all...)
		b.mu.Unlock()

		b.log.Debug("dispatch", slog.String("event", next.Topic()), slog.Int("handlers", len(hs)))
		for _, h := range hs {
			b.call(h, next)
		}

		b.mu.Lock()
	}
	b.queue = nil
	b.dispatching = false
	b.mu.Unlock()
}

func (b *Bus) call(h handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panic",
				slog.String("event", e.Topic()),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	h.fn(e)
}

// Pending returns the number of queued, undelivered events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
