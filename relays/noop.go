package relays

import relayDTO "github.com/joy-dx/relay/dto"

// Noop discards every event. Used when no relay is configured.
type Noop struct{}

func (Noop) Debug(relayDTO.RelayEventInterface) {}
func (Noop) Info(relayDTO.RelayEventInterface)  {}
func (Noop) Warn(relayDTO.RelayEventInterface)  {}
func (Noop) Error(relayDTO.RelayEventInterface) {}
func (Noop) Fatal(relayDTO.RelayEventInterface) {}
func (Noop) Meta(relayDTO.RelayEventInterface)  {}
