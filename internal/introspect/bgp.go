package introspect

import (
	"context"
	"fmt"

	"introspect/internal/health"
	"introspect/internal/service"
	"introspect/internal/transport"
)

var bgpNeighborList = []string{"ShowBgpNeighborSummaryResp", "neighbors", "list", "BgpNeighborResp"}

const bgpEncoding = "BGP"

// BGPNeighbor is one entry of the control node's neighbor summary.
type BGPNeighbor struct {
	Address  string
	State    string
	Encoding string
}

func (r *Reader) bgpNeighbors(ctx context.Context, port int) ([]BGPNeighbor, bool, error) {
	res, err := r.fetch(ctx, service.Control, port, bgpPeerPath, true)
	if err != nil {
		return nil, false, err
	}
	if !res.OK {
		return nil, false, nil
	}
	items, err := res.Doc.ListAt(bgpNeighborList...)
	if err != nil {
		return nil, true, fmt.Errorf("introspect: bgp neighbor summary: %w", err)
	}

	out := make([]BGPNeighbor, 0, len(items))
	for i, item := range items {
		n, err := decodeBGPNeighbor(item)
		if err != nil {
			return nil, true, fmt.Errorf("introspect: bgp neighbor %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, true, nil
}

func decodeBGPNeighbor(d transport.Doc) (BGPNeighbor, error) {
	var (
		n   BGPNeighbor
		err error
	)
	if n.Address, err = d.Text("peer_address"); err != nil {
		return n, err
	}
	if n.State, err = d.Text("state"); err != nil {
		return n, err
	}
	// Older control nodes omit encoding on XMPP rows.
	if _, ok := d["encoding"]; ok {
		if n.Encoding, err = d.Text("encoding"); err != nil {
			return n, err
		}
	}
	return n, nil
}

// BGPStatus classifies the BGP session with controllerIP as seen by the
// control node. A neighbor that is not listed is reported as Failed.
func (r *Reader) BGPStatus(ctx context.Context, controllerIP string, port int) (health.Code, error) {
	neighbors, ok, err := r.bgpNeighbors(ctx, port)
	if err != nil {
		return health.Failed, err
	}
	if !ok {
		return health.Passive, nil
	}
	for _, n := range neighbors {
		if n.Address == controllerIP {
			return health.FromToken(n.State)
		}
	}
	return health.FromToken(health.TokenNo)
}

// BGPDetect lists every BGP-encoded neighbor, in the order the control node
// reports them.
func (r *Reader) BGPDetect(ctx context.Context, port int) (Discovery, error) {
	neighbors, ok, err := r.bgpNeighbors(ctx, port)
	if err != nil {
		return Discovery{}, err
	}
	if !ok {
		return Discovery{}, fmt.Errorf("%w: %s", ErrUnreachable, service.Control)
	}
	d := NewDiscovery()
	for _, n := range neighbors {
		if n.Encoding == bgpEncoding {
			d.Add(n.Address)
		}
	}
	return d, nil
}
