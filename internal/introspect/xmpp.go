package introspect

import (
	"context"
	"errors"
	"fmt"

	"introspect/internal/health"
	"introspect/internal/service"
	"introspect/internal/transport"
)

// ErrUnknownControllerType is returned by ParseControllerType.
var ErrUnknownControllerType = errors.New("introspect: unknown controller type")

// ControllerType names the per-peer flag read from an XMPP connection entry.
type ControllerType string

const (
	CfgController   ControllerType = "cfg_controller"
	McastController ControllerType = "mcast_controller"
)

// ControllerTypes returns the accepted controller types.
func ControllerTypes() []string {
	return []string{string(CfgController), string(McastController)}
}

// ParseControllerType validates s.
func ParseControllerType(s string) (ControllerType, error) {
	switch ControllerType(s) {
	case CfgController, McastController:
		return ControllerType(s), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownControllerType, s)
	}
}

var xmppPeerList = []string{"AgentXmppConnectionStatus", "peer", "list", "AgentXmppData"}

func (r *Reader) xmppPeers(ctx context.Context, port int) ([]transport.Doc, bool, error) {
	res, err := r.fetch(ctx, service.VRouterAgent, port, xmppStatusPath, true)
	if err != nil {
		return nil, false, err
	}
	if !res.OK {
		return nil, false, nil
	}
	peers, err := res.Doc.ListAt(xmppPeerList...)
	if err != nil {
		return nil, true, fmt.Errorf("introspect: xmpp connection status: %w", err)
	}
	return peers, true, nil
}

// XMPPStatus classifies the vRouter agent's XMPP sessions for the given
// controller type. With a controllerIP, only that peer's flag counts and an
// unlisted peer is Failed. Without one, the result is Active if any peer
// reports an active flag and Failed otherwise.
func (r *Reader) XMPPStatus(ctx context.Context, ct ControllerType, port int, controllerIP string) (health.Code, error) {
	peers, ok, err := r.xmppPeers(ctx, port)
	if err != nil {
		return health.Failed, err
	}
	if !ok {
		return health.Passive, nil
	}

	for i, p := range peers {
		if controllerIP != "" {
			ip, err := p.Text("controller_ip")
			if err != nil {
				return health.Failed, fmt.Errorf("introspect: xmpp peer %d: %w", i, err)
			}
			if ip != controllerIP {
				continue
			}
		}

		token, err := p.Text(string(ct))
		if err != nil {
			return health.Failed, fmt.Errorf("introspect: xmpp peer %d: %w", i, err)
		}
		code, err := health.FromToken(token)
		if err != nil {
			return health.Failed, fmt.Errorf("introspect: xmpp peer %d %s: %w", i, ct, err)
		}
		if controllerIP != "" || code == health.Active {
			return code, nil
		}
	}
	return health.FromToken(health.TokenNo)
}

// XMPPDetect lists the controller address of every XMPP peer.
func (r *Reader) XMPPDetect(ctx context.Context, port int) (Discovery, error) {
	peers, ok, err := r.xmppPeers(ctx, port)
	if err != nil {
		return Discovery{}, err
	}
	if !ok {
		return Discovery{}, fmt.Errorf("%w: %s", ErrUnreachable, service.VRouterAgent)
	}
	d := NewDiscovery()
	for i, p := range peers {
		ip, err := p.Text("controller_ip")
		if err != nil {
			return Discovery{}, fmt.Errorf("introspect: xmpp peer %d: %w", i, err)
		}
		d.Add(ip)
	}
	return d, nil
}
