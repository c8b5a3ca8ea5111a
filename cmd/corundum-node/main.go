package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"corundum.dev/node/consensus"
	"corundum.dev/node/logging"
	"corundum.dev/node/metrics"
	"corundum.dev/node/node"
	"corundum.dev/node/node/store"
)

var cmdlineFlags struct {
	configFile string
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.Parse()

	cfg, err := node.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level)
	logger := logging.GetLogger()
	defer func() {
		_ = logger.Sync()
	}()

	params := cfg.Params()
	logger.Infof("starting on %s (pow limit %08x, fork height %d)",
		params.Name, params.PowLimitBits, params.ForkHeight)

	db, err := store.Open(cfg.Storage.Directory, params.Name)
	if err != nil {
		logger.Fatalf("failed to open header store: %s", err)
	}
	defer db.Close()

	index, err := node.LoadIndex(db)
	if err != nil {
		logger.Fatalf("failed to load block index: %s", err)
	}

	if cfg.Metrics.ListenPort > 0 {
		metrics.Start(cfg.Metrics.ListenAddress, cfg.Metrics.ListenPort)
		logger.Infof("metrics listening on %s:%d",
			cfg.Metrics.ListenAddress, cfg.Metrics.ListenPort)
	}

	observe := retargetObserver(logger)

	if tip := index.Tip(); tip != nil {
		metrics.SetTipHeight(tip.Height())
		logger.Infof("loaded %d headers, tip %x work %v",
			tip.Height()+1, tip.Hash(), tip.ChainWork())
	} else {
		logger.Infof("header store empty, awaiting genesis")
	}

	bits, err := index.NextWorkRequired(nowUnixU64(), params, observe)
	if err != nil {
		logger.Fatalf("block index violates schedule preconditions: %s", err)
	}
	logger.Infof("next block requires bits %08x", bits)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Infof("shutting down")
}

// retargetObserver logs retargets and forwards them to the metrics observer.
func retargetObserver(logger *logging.Logger) consensus.RetargetObserver {
	meter := metrics.RetargetObserver()
	return func(ev consensus.RetargetEvent) {
		meter(ev)
		logger.Infow("retarget",
			"height", ev.Height,
			"raw_timespan", ev.RawTimespan,
			"clamped_timespan", ev.ClampedTimespan,
			"target_timespan", ev.TargetTimespan,
			"old_bits", fmt.Sprintf("%08x", ev.OldBits),
			"new_bits", fmt.Sprintf("%08x", ev.NewBits),
		)
	}
}

func nowUnixU64() uint64 {
	now := time.Now().Unix()
	if now <= 0 {
		return 0
	}
	return uint64(now)
}
