package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"voicelab-server-go/internal/bootstrap"
	"voicelab-server-go/internal/platform/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to CONFIG_PATH, then ./config.yaml)")
	flag.Parse()

	res, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(res.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	if res.Path == "" {
		app.Logger.InfoTag("Boot", "no config file found, running with defaults and the mock provider")
	} else {
		app.Logger.InfoTag("Boot", "loaded config from %s", res.Path)
	}

	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
