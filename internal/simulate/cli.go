package simulate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the pulse simulator.
func ShowHelp() {
	os.Stdout.WriteString(`OlyBars Pulse Simulator
=======================

Runs an embedded pulse engine, seeds synthetic venues, submits concurrent
check-ins over HTTP and reads back pulses, feeds and the buzz window.

Usage:
  go run cmd/pulse-sim/main.go [options]

Options:
  -addr string
        Listen address for the embedded engine (default ":9081")
  -venues int
        Number of venues to seed (default 25)
  -users int
        Number of simulated users (default 500)
  -checkins int
        Number of check-in attempts to submit (default 1000)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Log every venue pulse as it is polled
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/pulse-sim/main.go

  # Larger run against a custom port
  go run cmd/pulse-sim/main.go -venues 100 -checkins 10000 -addr :9099
`)
}
