package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"emperror.dev/errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sysmon-gui/internal/config"
	"sysmon-gui/internal/panel"
	"sysmon-gui/internal/sysinfo"
	"sysmon-gui/internal/termview"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sysmon-gui",
	Short: "Live system usage panel",
	Long: `sysmon-gui samples CPU, memory, temperature and network usage every second
and shows the readouts next to one minute of history graphs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(configPath, logLevel, cmd.Flags().Changed("log-level"))
		if err != nil {
			return err
		}
		lvl, _ := log.ParseLevel(c.LogLevel)
		log.SetLevel(lvl)
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDesktop(cmd.Context(), cfg)
	},
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the panel in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTerminal(cmd.Context(), cfg)
	},
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List temperature sensors and their current readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		sampler := sysinfo.NewSampler(log.StandardLogger())
		return printSensors(cmd.Context(), cmd.OutOrStdout(), sampler, cfg)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one sample of every metric as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		sampler := sysinfo.NewSampler(log.StandardLogger())
		return printSnapshot(cmd.Context(), cmd.OutOrStdout(), sampler)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return errors.New("no config path: pass --config")
		}
		if err := config.Save(cfg, configPath); err != nil {
			return err
		}
		log.WithField("path", configPath).Info("configuration written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath,
		"config",
		config.DefaultPath(),
		"Path to the YAML configuration file.",
	)
	rootCmd.PersistentFlags().StringVar(&logLevel,
		"log-level",
		"info",
		"Log level. One of debug, info, warn, error. Overrides log_level from the config file.",
	)
	rootCmd.AddCommand(termCmd, sensorsCmd, snapshotCmd, configCmd)
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --log-level flag when it
// was set explicitly.
func loadConfig(path, level string, levelSet bool) (*config.Config, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if levelSet {
		c.LogLevel = level
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}

// openLogFile returns the file that receives log output while the terminal
// panel owns the screen.
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		f, err := os.CreateTemp("", "sysmon-gui-*.log")
		return f, errors.Wrap(err, "creating log file")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	return f, errors.Wrapf(err, "opening log file %s", path)
}

func runTerminal(ctx context.Context, cfg *config.Config) error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return errors.New("stdout is not a terminal")
	}

	f, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer f.Close()
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := log.StandardLogger()
	sampler := sysinfo.NewSampler(logger)
	p := panel.New(cfg, sampler.Cores(ctx), sampler.Sensors(ctx), logger)
	snaps := sysinfo.NewPoller(sampler, logger).Run(ctx)

	log.WithField("log_file", f.Name()).Info("terminal panel started")
	prog := tea.NewProgram(termview.New(p, snaps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "running terminal panel")
	}
	return nil
}

func printSensors(ctx context.Context, out io.Writer, sampler *sysinfo.Sampler, cfg *config.Config) error {
	labels := sampler.Sensors(ctx)
	if len(labels) == 0 {
		fmt.Fprintln(out, "no temperature sensors found")
		return nil
	}

	snap, err := sampler.Sample(ctx)
	if err != nil {
		return errors.Wrap(err, "sampling sensors")
	}
	p := panel.New(cfg, 1, labels, log.StandardLogger())
	for _, r := range p.Apply(snap).Temperatures {
		fmt.Fprintf(out, "%s\t%s\n", r.Label, r.Text)
	}
	return nil
}

func printSnapshot(ctx context.Context, out io.Writer, sampler *sysinfo.Sampler) error {
	snap, err := sampler.Sample(ctx)
	if err != nil {
		return errors.Wrap(err, "sampling")
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
