package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/simulate"
)

// Default configuration constants.
const (
	defaultNumVenues   = 25
	defaultNumUsers    = 500
	defaultNumCheckins = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSimTimeout  = 10 * time.Minute
)

func main() {
	var (
		addr        = flag.String("addr", ":9081", "Listen address for the embedded engine")
		numVenues   = flag.Int("venues", defaultNumVenues, "Number of venues to seed")
		numUsers    = flag.Int("users", defaultNumUsers, "Number of simulated users")
		numCheckins = flag.Int("checkins", defaultNumCheckins, "Number of check-in attempts to submit")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile     = flag.String("log", "", "Log file for simulation output (default: sim_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Log every venue pulse as it is polled")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	config := &simulate.Config{
		Addr:        *addr,
		NumVenues:   *numVenues,
		NumUsers:    *numUsers,
		NumCheckins: *numCheckins,
		Workers:     *workers,
		Timeout:     *timeout,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
