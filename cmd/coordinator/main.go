package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/goldengate-middleware/pkg/app"
	"github.com/chainsafe/goldengate-middleware/pkg/app/coordinator"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = coordinator.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Coordinator exited: %v\n", err)
		os.Exit(1)
	}
}
