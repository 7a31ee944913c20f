// migrate applies the embedded schema: go run ./cmd/migrate [up|down|version].
package main

import (
	"flag"
	"fmt"
	"os"

	"taskhub/internal/config"
	"taskhub/internal/db/migrate"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|down|version]")
	}
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; export it or add it to .env")
		os.Exit(1)
	}

	switch command {
	case "up", "down":
		if err := migrate.Run(cfg.DatabaseURL, command); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	case "version":
		v, dirty, err := migrate.Version(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
