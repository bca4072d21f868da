package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/telemetrychart/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	n, err := convert(*yamlFile, *sqliteFile, *force, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("DRY RUN complete - %d values would be written\n", n)
		return
	}
	fmt.Printf("Wrote %d values to %s\n", n, *sqliteFile)
}

// convert copies every setting of the YAML file into a fresh SQLite config
// database and returns the number of values written.
func convert(yamlFile, sqliteFile string, force, dryRun bool) (int, error) {
	cfg, err := config.NewYAMLProvider(yamlFile).LoadConfig()
	if err != nil {
		return 0, fmt.Errorf("loading YAML configuration: %w", err)
	}
	values := cfg.Values()

	if dryRun {
		for _, v := range values {
			fmt.Printf("  %s.%s = %s\n", v.Section, v.Key, v.Value)
		}
		return len(values), nil
	}

	if _, err := os.Stat(sqliteFile); err == nil {
		if !force {
			return 0, fmt.Errorf("SQLite file already exists: %s (use -force to overwrite)", sqliteFile)
		}
		if err := os.Remove(sqliteFile); err != nil {
			return 0, err
		}
	}

	provider, err := config.NewSQLiteProvider(sqliteFile)
	if err != nil {
		return 0, err
	}
	defer provider.Close()

	for _, v := range values {
		if err := provider.SetValue(v.Section, v.Key, v.Value); err != nil {
			return 0, err
		}
	}
	return len(values), nil
}
