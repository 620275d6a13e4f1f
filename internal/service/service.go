// Package service holds the static table of control-plane services and the
// introspection port each one listens on.
package service

import (
	"errors"
	"fmt"
)

// ErrUnknownService is returned by Parse for a name outside the table.
var ErrUnknownService = errors.New("service: unknown service")

// Name identifies a control-plane service with an introspection endpoint.
type Name string

const (
	Schema       Name = "schema"
	VRouterAgent Name = "vrouter-agent"
	Control      Name = "control"
	ConfigAPI    Name = "config-api"
	AnalyticsAPI Name = "analytics-api"
	Collector    Name = "collector"
	AlarmGen     Name = "alarm-gen"
	Discovery    Name = "discovery"
	DNS          Name = "dns"
	SvcMonitor   Name = "svc-monitor"
)

// ordered keeps CLI help and completion output stable.
var ordered = []Name{
	Schema, VRouterAgent, ConfigAPI, AnalyticsAPI, Collector,
	AlarmGen, Control, Discovery, DNS, SvcMonitor,
}

var ports = map[Name]int{
	Schema:       8087,
	VRouterAgent: 8085,
	Control:      8083,
	ConfigAPI:    8084,
	AnalyticsAPI: 8090,
	Collector:    8089,
	AlarmGen:     5995,
	Discovery:    5997,
	DNS:          8092,
	SvcMonitor:   8088,
}

// Names returns every known service name in display order.
func Names() []string {
	out := make([]string, len(ordered))
	for i, n := range ordered {
		out[i] = string(n)
	}
	return out
}

// Parse validates name against the table.
func Parse(name string) (Name, error) {
	n := Name(name)
	if _, ok := ports[n]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownService, name)
	}
	return n, nil
}

// Port returns the built-in introspection port for n, or 0 if n is not in
// the table.
func (n Name) Port() int { return ports[n] }

// Resolve picks the port to contact for n. An explicit port (> 0) wins,
// then an override keyed by service name, then the built-in port.
func Resolve(n Name, explicit int, overrides map[string]int) int {
	if explicit > 0 {
		return explicit
	}
	if p, ok := overrides[string(n)]; ok && p > 0 {
		return p
	}
	return n.Port()
}
