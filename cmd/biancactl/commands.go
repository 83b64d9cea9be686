package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/command"
	"candy-bianca-backend/internal/control"
	"candy-bianca-backend/internal/device"
	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/logging"
	"candy-bianca-backend/internal/parse"
	"candy-bianca-backend/internal/pending"
	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
)

// Global flags
var (
	hostFlag     string
	timeoutFlag  int
	logLevelFlag string
	outputFormat string
)

// Start flags
var (
	presetFlag     string
	programURLFlag string
	tempFlag       int
	spinFlag       int
	delayFlag      int
	dryRunFlag     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Washer address (IP or hostname)")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 10, "Request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(programsCmd)
	rootCmd.AddCommand(probeCmd)

	addStartFlags(startCmd)
}

func addStartFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&presetFlag, "preset", "", "Program preset name (see 'biancactl programs')")
	cmd.Flags().StringVar(&programURLFlag, "program-url", "", "Raw program fragment, e.g. \"PrNm=1&PrCode=65&PrStr=Cotone\"")
	cmd.Flags().IntVar(&tempFlag, "temp", 0, "Wash temperature in °C")
	cmd.Flags().IntVar(&spinFlag, "spin", 0, "Spin level")
	cmd.Flags().IntVar(&delayFlag, "delay", 0, "Start delay in minutes, sent to the washer as is")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Build and print the command without sending it")
}

func newClient() (*device.Client, *zap.Logger, error) {
	host, err := parse.Host(hostFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("--host: %w", err)
	}
	logger, err := logging.New(logLevelFlag)
	if err != nil {
		return nil, nil, err
	}
	return device.NewClient(host, time.Duration(timeoutFlag)*time.Second, logger), logger, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Two requests per command at most, each bounded by the client timeout.
	return context.WithTimeout(cmd.Context(), 2*time.Duration(timeoutFlag)*time.Second+time.Second)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the washer status",
	Example: `  biancactl status --host 192.168.1.20
  biancactl status --host 192.168.1.20 --format json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	raw, err := client.FetchStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status from %s: %w", client.Host(), err)
	}
	n := status.Interpret(raw)

	if outputFormat == "json" {
		return printJSON(n)
	}

	rows := make([][]string, 0, len(status.Sensors))
	for _, r := range status.Readings(n) {
		rows = append(rows, []string{r.Name, formatValue(r.Value, r.Unit)})
	}
	fmt.Println(renderTable([]string{"Sensor", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(n.Statistics) > 0 {
		keys := make([]string, 0, len(n.Statistics))
		for k := range n.Statistics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		stats := make([][]string, 0, len(keys))
		for _, k := range keys {
			stats = append(stats, []string{k, fmt.Sprint(n.Statistics[k])})
		}
		fmt.Println()
		fmt.Println(renderTable([]string{"Counter", "Value"}, stats, []columnAlignment{alignLeft, alignRight}))
	}
	return nil
}

func formatValue(v any, unit string) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprint(v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print the raw status record as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		raw, err := client.FetchStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to read status from %s: %w", client.Host(), err)
		}
		return printJSON(raw)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a program",
	Long: `Start a program on the washer.

Values not given on the command line are taken from the washer's current
status. When a program is sent without --delay, the delay is reset to 0.`,
	Example: `  # Restart with the values currently set on the panel
  biancactl start --host 192.168.1.20

  # Start a preset at 40°C
  biancactl start --host 192.168.1.20 --preset Cotone --temp 40

  # Print the command without sending it
  biancactl start --host 192.168.1.20 --preset Lana --dry-run`,
	RunE: runStart,
}

// startOverrides turns the start flags that were set into validated overrides.
func startOverrides(cmd *cobra.Command) (pending.Overrides, error) {
	o := pending.Overrides{
		ProgramPreset: presetFlag,
		ProgramURL:    programURLFlag,
	}
	if cmd.Flags().Changed("temp") {
		o.Temperature = &tempFlag
	}
	if cmd.Flags().Changed("spin") {
		o.Spin = &spinFlag
	}
	if cmd.Flags().Changed("delay") {
		o.Delay = &delayFlag
	}
	if err := o.Validate(); err != nil {
		return pending.Overrides{}, err
	}
	return o, nil
}

func runStart(cmd *cobra.Command, args []string) error {
	o, err := startOverrides(cmd)
	if err != nil {
		return err
	}
	client, logger, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e := entry.New(config.DeviceConfig{ID: parse.DeviceID(client.Host()), Host: client.Host(), TestMode: dryRunFlag})
	raw, err := client.FetchStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status from %s: %w", client.Host(), err)
	}
	e.SetStatus(raw, time.Now())

	fmt.Printf("Command: %s\n", command.EncodeStart(pending.BuildStartIntent(&pending.Options{}, raw, o)))

	ctrl := control.NewController(e, client, nil, nil, logger)
	result, err := ctrl.Start(ctx, o)
	if err != nil {
		return err
	}
	fmt.Println(result.Detail)
	return nil
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running program",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logger, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		e := entry.New(config.DeviceConfig{ID: parse.DeviceID(client.Host()), Host: client.Host()})
		result, err := control.NewController(e, client, nil, nil, logger).Stop(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Detail)
		return nil
	},
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List program presets and the program catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat == "json" {
			return printJSON(map[string]any{
				"presets":             programs.Presets(),
				"temperature_options": programs.TemperatureOptions,
				"spin_options":        programs.SpinOptions,
			})
		}

		presets := programs.Presets()
		rows := make([][]string, 0, len(presets))
		for _, p := range presets {
			rows = append(rows, []string{p.Name, p.Fragment})
		}
		fmt.Println(renderTable([]string{"Preset", "Fragment"}, rows, nil))
		fmt.Println()

		catalog := programs.Catalog()
		rows = make([][]string, 0, len(catalog))
		for _, m := range catalog {
			rows = append(rows, []string{
				strconv.Itoa(m.Code),
				strconv.Itoa(m.Pr),
				optional(m.SoilLevel),
				optional(m.DryMode),
				m.FullName,
				m.ShortName,
			})
		}
		fmt.Println(renderTable(
			[]string{"PrCode", "Pr", "SLevel", "DryT", "Name", "Short"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
		))
		return nil
	},
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that a host answers like a Candy Bianca washer",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := client.Probe(ctx); err != nil {
			return fmt.Errorf("%s is not reachable as a washer: %w", client.Host(), err)
		}
		fmt.Printf("%s answers as a Candy Bianca washer (device id %s)\n", client.Host(), parse.DeviceID(client.Host()))
		return nil
	},
}
