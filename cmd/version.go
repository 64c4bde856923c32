package cmd

import (
	"fmt"

	"github.com/askviz/askviz/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func runVersion() {
	fmt.Printf("askviz %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)

	cfg, err := config.Load()
	if err != nil {
		fmt.Println()
		fmt.Println("Configuration: not loaded")
		fmt.Printf("  %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Service: %s\n", cfg.BaseURL)
	fmt.Printf("  Deployment: %s\n", cfg.MdlHash)
	fmt.Printf("  Language: %s\n", cfg.Language)
}
