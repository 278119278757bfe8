// discovery.go - mDNS advertisement of the TCP MIDI bridge, so a LAN
// controller can find it without a configured address. Grounded on
// doismellburning-samoyed's use of github.com/brutella/dnssd. This is a
// modern analogue of the original firmware's point-to-point UART link,
// which has no equivalent network-discovery concept of its own.

package transport

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// AdvertiseTCPBridge registers a _rockit._tcp service for the TCP bridge
// listening on port, running until ctx is canceled.
func AdvertiseTCPBridge(ctx context.Context, instanceName string, port int) error {
	cfg := dnssd.Config{
		Name: instanceName,
		Type: "_rockit._tcp",
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("transport: discovery config: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("transport: discovery responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return fmt.Errorf("transport: discovery add: %w", err)
	}
	return responder.Respond(ctx)
}
