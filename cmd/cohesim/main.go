// Command cohesim simulates a multi-core platform built around a
// directory-based MESI coherence controller and a shared write-back cache.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "cohesim",
	Short: "A cache coherence platform simulator",
	Long: `cohesim simulates a platform where multiple cores share a
write-back cache through a directory-based MESI coherence controller,
together with an instruction-fetch arbiter, mailboxes, semaphores, and
an interrupt aggregator.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(loadEnvDefaults)

	rootCmd.PersistentFlags().BoolP(
		"verbose", "v", false, "enable debug logging")
}

// loadEnvDefaults reads a .env file so that flags such as the monitor port
// can default from the environment.
func loadEnvDefaults() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Debug("no .env file loaded")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
