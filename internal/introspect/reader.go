// Package introspect classifies the health of control-plane components from
// their introspection documents.
//
// Each operation issues one request through a Fetcher, normalises the peer
// section of the reply into a uniform sequence, and reduces it to a
// health.Code or a Discovery document. Nothing is cached between calls.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"

	"introspect/internal/health"
	"introspect/internal/service"
	"introspect/internal/transport"
)

// ErrUnreachable is returned by the detect operations when the endpoint
// cannot be contacted. Monitor operations report Passive instead.
var ErrUnreachable = errors.New("introspect: endpoint unreachable")

// Introspection request paths.
const (
	nodeStatusPath = "Snh_SandeshUVECacheReq?x=NodeStatus"
	xmppStatusPath = "Snh_AgentXmppConnectionStatusReq"
	bgpPeerPath    = "Snh_ShowBgpNeighborSummaryReq"
)

// functionalState is intentionally loose: any "Functional" between a <state
// opening and a </state> closing tag counts, well-formed or not.
var functionalState = regexp.MustCompile(`(?s)<state.*?Functional.*?</state>`)

// Fetcher performs one GET and optionally parses the reply as XML.
// *transport.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, parseXML bool) (transport.Result, error)
}

// Reader runs the status operations against a single host.
type Reader struct {
	host      string
	fetcher   Fetcher
	overrides map[string]int
}

// NewReader returns a Reader for host. overrides maps service names to
// ports that replace the built-in table; it may be nil.
func NewReader(host string, f Fetcher, overrides map[string]int) *Reader {
	return &Reader{host: host, fetcher: f, overrides: overrides}
}

func (r *Reader) url(port int, path string) string {
	return "http://" + net.JoinHostPort(r.host, strconv.Itoa(port)) + "/" + path
}

func (r *Reader) fetch(ctx context.Context, svc service.Name, port int, path string, parseXML bool) (transport.Result, error) {
	u := r.url(service.Resolve(svc, port, r.overrides), path)
	res, err := r.fetcher.Fetch(ctx, u, parseXML)
	if err != nil {
		return transport.Result{}, fmt.Errorf("introspect: %s: %w", svc, err)
	}
	return res, nil
}

// NodeStatus reports whether svc considers itself functional. port overrides
// the service's table port when > 0.
func (r *Reader) NodeStatus(ctx context.Context, svc service.Name, port int) (health.Code, error) {
	res, err := r.fetch(ctx, svc, port, nodeStatusPath, false)
	if err != nil {
		return health.Failed, err
	}
	if !res.OK {
		return health.Passive, nil
	}
	if functionalState.MatchString(res.Text) {
		return health.Active, nil
	}
	return health.Failed, nil
}
