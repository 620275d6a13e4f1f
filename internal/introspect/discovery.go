package introspect

import "encoding/json"

// DiscoveryEntry is one discovered controller. The JSON key is a macro name
// expanded by the monitoring system's discovery templates and must not change.
type DiscoveryEntry struct {
	ControllerIP string `json:"{#CONTROLLER_IP}"`
}

// Discovery is a low-level discovery document.
type Discovery struct {
	Data []DiscoveryEntry `json:"data"`
}

// NewDiscovery returns an empty document that encodes as {"data":[]}.
func NewDiscovery() Discovery {
	return Discovery{Data: []DiscoveryEntry{}}
}

// Add appends a controller address.
func (d *Discovery) Add(ip string) {
	d.Data = append(d.Data, DiscoveryEntry{ControllerIP: ip})
}

// IPs returns the discovered addresses in order.
func (d Discovery) IPs() []string {
	out := make([]string, len(d.Data))
	for i, e := range d.Data {
		out[i] = e.ControllerIP
	}
	return out
}

// JSON encodes the document.
func (d Discovery) JSON() (string, error) {
	if d.Data == nil {
		d.Data = []DiscoveryEntry{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
