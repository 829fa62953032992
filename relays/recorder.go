package relays

import (
	"sync"

	relayDTO "github.com/joy-dx/relay/dto"
)

// Recorder keeps every event in memory. Handy in tests and for debugging an installation.
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

type RecordedEvent struct {
	Level string
	Event relayDTO.RelayEventInterface
}

func (r *Recorder) Debug(data relayDTO.RelayEventInterface) { r.add("debug", data) }
func (r *Recorder) Info(data relayDTO.RelayEventInterface)  { r.add("info", data) }
func (r *Recorder) Warn(data relayDTO.RelayEventInterface)  { r.add("warn", data) }
func (r *Recorder) Error(data relayDTO.RelayEventInterface) { r.add("error", data) }
func (r *Recorder) Fatal(data relayDTO.RelayEventInterface) { r.add("fatal", data) }
func (r *Recorder) Meta(data relayDTO.RelayEventInterface)  { r.add("meta", data) }

func (r *Recorder) add(level string, e relayDTO.RelayEventInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Level: level, Event: e})
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}

// Count returns how many events of the given level were recorded. Empty level counts all.
func (r *Recorder) Count(level string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level == "" {
		return len(r.events)
	}
	n := 0
	for _, e := range r.events {
		if e.Level == level {
			n++
		}
	}
	return n
}
