package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"introspect/internal/config"
	"introspect/internal/health"
	"introspect/internal/introspect"
	"introspect/internal/logging"
	"introspect/internal/service"
	"introspect/internal/transport"
)

// app holds what PersistentPreRunE resolves for the leaf commands.
type app struct {
	configFile string
	envFile    string
	port       int

	reader *introspect.Reader
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "introspect",
		Short:         "Control-plane introspection health probe",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Connection flags, shared by every subcommand.
	pf := root.PersistentFlags()
	pf.StringP("host", "H", config.Default().Host, "Host to connect")
	pf.IntVarP(&a.port, "port", "p", 0, "Port to connect (defaults to the service's introspection port)")
	pf.String("timeout", config.Default().Timeout, "Request timeout")
	pf.String("log-level", config.Default().LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&a.configFile, "config", "", "Path to an optional YAML config file")
	pf.StringVar(&a.envFile, "env-file", "", "Path to an optional dotenv file")

	root.AddCommand(a.statusCmd(), a.xmppCmd(), a.bgpCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		File:    a.configFile,
		EnvFile: a.envFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return err
	}
	if err := logging.Configure(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}
	if a.port < 0 || a.port > 65535 {
		return fmt.Errorf("invalid port %d", a.port)
	}

	slog.Debug("probe configured",
		"command", cmd.CommandPath(),
		"host", cfg.Host,
		"port", a.port,
		"timeout", cfg.ParsedTimeout().String(),
		"port_overrides", len(cfg.Ports),
	)

	a.reader = introspect.NewReader(cfg.Host, transport.New(cfg.ParsedTimeout()), cfg.Ports)
	return nil
}

// group returns a command that only hosts subcommands.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fmt.Errorf("%s: an action is required (detect or monitor)", cmd.CommandPath())
		},
	}
}

func printCode(cmd *cobra.Command, code health.Code) {
	fmt.Fprintln(cmd.OutOrStdout(), code.Text())
}

func printDiscovery(cmd *cobra.Command, d introspect.Discovery) error {
	out, err := d.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "status <service_name>",
		Short:     "Monitor service status",
		ValidArgs: service.Names(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.Parse(args[0])
			if err != nil {
				return err
			}
			code, err := a.reader.NodeStatus(cmd.Context(), svc, a.port)
			if err != nil {
				return err
			}
			printCode(cmd, code)
			return nil
		},
	}
}

func (a *app) xmppCmd() *cobra.Command {
	cmd := group("xmpp", "Monitor XMPP introspect")

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Detect XMPP controllers set up in the vRouter agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.reader.XMPPDetect(cmd.Context(), a.port)
			if err != nil {
				return err
			}
			return printDiscovery(cmd, d)
		},
	}

	var controllerIP string
	monitor := &cobra.Command{
		Use:       "monitor <controller_type>",
		Short:     "Monitor XMPP controllers set up in the vRouter agent",
		ValidArgs: introspect.ControllerTypes(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := introspect.ParseControllerType(args[0])
			if err != nil {
				return err
			}
			code, err := a.reader.XMPPStatus(cmd.Context(), ct, a.port, controllerIP)
			if err != nil {
				return err
			}
			printCode(cmd, code)
			return nil
		},
	}
	monitor.Flags().StringVar(&controllerIP, "controller-ip", "", "XMPP controller IP to be monitored")

	cmd.AddCommand(detect, monitor)
	return cmd
}

func (a *app) bgpCmd() *cobra.Command {
	cmd := group("bgp", "Monitor BGP introspect")

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Detect BGP peers of the control node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.reader.BGPDetect(cmd.Context(), a.port)
			if err != nil {
				return err
			}
			return printDiscovery(cmd, d)
		},
	}

	monitor := &cobra.Command{
		Use:   "monitor <controller_ip>",
		Short: "Monitor a BGP peer of the control node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := a.reader.BGPStatus(cmd.Context(), args[0], a.port)
			if err != nil {
				return err
			}
			printCode(cmd, code)
			return nil
		},
	}

	cmd.AddCommand(detect, monitor)
	return cmd
}
