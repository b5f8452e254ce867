// Package eventbus is a thin wrapper around the process-wide event bus with
// the job lifecycle topics used across the server.
package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// Job lifecycle topics. Payload is the job snapshot published by the task
// manager; the websocket hub relays these to subscribed clients.
const (
	TopicJobAccepted  = "job.accepted"
	TopicJobStarted   = "job.started"
	TopicJobCompleted = "job.completed"
	TopicJobFailed    = "job.failed"
	TopicJobCancelled = "job.cancelled"
)

var (
	instance evbus.Bus
	once     sync.Once
)

// Get returns the process-wide bus.
func Get() evbus.Bus {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates an independent bus, used by tests to avoid cross-talk.
func New() evbus.Bus {
	return evbus.New()
}

// Publish emits an event on the process-wide bus.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// Subscribe registers a handler on the process-wide bus.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// Unsubscribe removes a handler from the process-wide bus.
func Unsubscribe(topic string, fn interface{}) error {
	return Get().Unsubscribe(topic, fn)
}
