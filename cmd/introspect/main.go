// Command introspect probes the HTTP introspection endpoints of SDN
// control-plane daemons and prints a health code or a discovery document for
// an external monitoring agent.
//
// Usage:
//
//	introspect status <service_name>               [-H host] [-p port]
//	introspect xmpp detect                         [-H host] [-p port]
//	introspect xmpp monitor <controller_type>      [-H host] [-p port] [--controller-ip IP]
//	introspect bgp detect                          [-H host] [-p port]
//	introspect bgp monitor <controller_ip>         [-H host] [-p port]
//
// Monitor commands print 0 (FAILED), 1 (ACTIVE) or 2 (PASSIVE, endpoint
// unreachable). Detect commands print {"data":[{"{#CONTROLLER_IP}":"..."}]}.
// The process exits non-zero only when the reply cannot be classified.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version information, set at build time via -ldflags.
//
//	-X main.version=$(git describe --tags --always)
//	-X main.commit=$(git rev-parse --short HEAD)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line in args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
