package introspect_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"introspect/internal/introspect"
	"introspect/internal/transport"
)

// ── fake fetcher ─────────────────────────────────────────────────────────────

// fakeFetcher answers every request with the same body and records the URLs
// it was asked for. A nil body simulates an unreachable endpoint.
type fakeFetcher struct {
	mu   sync.Mutex
	body *string
	urls []string
}

func reply(body string) *fakeFetcher { return &fakeFetcher{body: &body} }

func unreachable() *fakeFetcher { return &fakeFetcher{} }

func (f *fakeFetcher) Fetch(_ context.Context, url string, parseXML bool) (transport.Result, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if f.body == nil {
		return transport.Result{OK: false, Doc: transport.Doc{}}, nil
	}
	if !parseXML {
		return transport.Result{OK: true, Status: 200, Text: *f.body}, nil
	}
	doc, err := transport.ParseXML([]byte(*f.body))
	if err != nil {
		return transport.Result{}, err
	}
	return transport.Result{OK: true, Status: 200, Doc: doc}, nil
}

func (f *fakeFetcher) lastURL(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.urls, "no request was made")
	return f.urls[len(f.urls)-1]
}

func newReader(f *fakeFetcher) *introspect.Reader {
	return introspect.NewReader("10.1.1.1", f, nil)
}

// ── document builders ────────────────────────────────────────────────────────

const xmlProlog = `<?xml version="1.0" encoding="utf-8"?>` +
	`<?xml-stylesheet type="text/xsl" href="/universal_parse.xsl"?>`

type neighbor struct{ addr, encoding, state string }

func bgpSummary(neighbors ...neighbor) string {
	var b strings.Builder
	b.WriteString(xmlProlog)
	b.WriteString(`<ShowBgpNeighborSummaryResp type="sandesh"><neighbors type="list" identifier="1">`)
	fmt.Fprintf(&b, `<list type="struct" size="%d">`, len(neighbors))
	for i, n := range neighbors {
		fmt.Fprintf(&b, `<BgpNeighborResp>`+
			`<peer type="string" identifier="1">peer-%d</peer>`+
			`<peer_address type="string" identifier="2" link="bgp_neighbor">%s</peer_address>`+
			`<encoding type="string" identifier="5">%s</encoding>`+
			`<state type="string" identifier="9">%s</state>`+
			`</BgpNeighborResp>`, i, n.addr, n.encoding, n.state)
	}
	b.WriteString(`</list></neighbors></ShowBgpNeighborSummaryResp>`)
	return b.String()
}

type xmppPeer struct{ ip, cfg, mcast string }

func xmppStatus(peers ...xmppPeer) string {
	var b strings.Builder
	b.WriteString(xmlProlog)
	b.WriteString(`<AgentXmppConnectionStatus type="sandesh"><peer type="list" identifier="1">`)
	fmt.Fprintf(&b, `<list type="struct" size="%d">`, len(peers))
	for _, p := range peers {
		fmt.Fprintf(&b, `<AgentXmppData>`+
			`<controller_ip type="string" identifier="1">%s</controller_ip>`+
			`<state type="string" identifier="2">Established</state>`+
			`<cfg_controller type="string" identifier="4">%s</cfg_controller>`+
			`<mcast_controller type="string" identifier="5">%s</mcast_controller>`+
			`</AgentXmppData>`, p.ip, p.cfg, p.mcast)
	}
	b.WriteString(`</list></peer></AgentXmppConnectionStatus>`)
	return b.String()
}
