package main

import (
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation described by a platform file",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP(
		"config", "c", "", "platform description file (YAML)")
	runCmd.Flags().StringP(
		"output", "o", "", "output database file name")
	runCmd.Flags().Int(
		"monitor-port", 0, "port for the monitoring server")
	runCmd.Flags().Bool(
		"no-monitor", false, "disable the monitoring server")
	runCmd.Flags().Bool(
		"open", false, "open the monitor URL in a browser")
	runCmd.Flags().Bool(
		"trace", false, "record memory transaction traces")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)

	platform, err := loadPlatform(cmd)
	if err != nil {
		return err
	}

	overridePlatformFromFlags(cmd, &platform)

	logrus.WithFields(logrus.Fields{
		"name":  platform.Name,
		"cores": platform.NumCores,
		"sets":  platform.Cache.NumSets,
		"ways":  platform.Cache.NumWays,
	}).Info("building platform")

	p := buildPlatform(platform)
	defer p.sim.Terminate()

	if open, _ := cmd.Flags().GetBool("open"); open {
		if addr := p.sim.MonitorAddr(); addr != "" {
			if err := browser.OpenURL(addr); err != nil {
				logrus.WithError(err).Warn("cannot open browser")
			}
		}
	}

	p.scheduleWorkload()

	if err := p.sim.GetEngine().Run(); err != nil {
		return err
	}

	p.reportResults()

	return nil
}

func setupLogging(cmd *cobra.Command) {
	logrus.SetOutput(os.Stderr)

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func loadPlatform(cmd *cobra.Command) (config.Platform, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("COHESIM_CONFIG")
	}

	if path == "" {
		return config.Default(), nil
	}

	logrus.WithField("path", path).Debug("loading platform file")

	return config.Load(path)
}

func overridePlatformFromFlags(cmd *cobra.Command, p *config.Platform) {
	if noMonitor, _ := cmd.Flags().GetBool("no-monitor"); noMonitor {
		p.Monitor.Enabled = false
	}

	if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
		p.Monitor.Port = port
	} else if env := os.Getenv("COHESIM_MONITOR_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			p.Monitor.Port = port
		}
	}

	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		p.TraceOn = true
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		p.Output = output
	}
}
