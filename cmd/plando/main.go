// Plando resolves plandomizer distribution files against a Lua-defined game
// data set.
// Usage: plando [--version] [--validate] [--plain] [--seed <n>] [--out <file>] [--spoiler] <tables_dir> <distribution_file>
package main

import (
	"fmt"
	"os"

	"github.com/nathoo/plando/cli"
	"github.com/nathoo/plando/loader"
	"github.com/nathoo/plando/tui"
	"github.com/nathoo/plando/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: plando [--version] [--validate] [--plain] [--seed <n>] [--out <file>] [--spoiler] <tables_dir> <distribution_file>\n")
	os.Exit(1)
}

func main() {
	plain := false
	validate := false
	spoiler := false
	var seed int64
	seedSet := false
	var outFile string
	var tablesDir string
	var distFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("plando %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--validate":
			validate = true
		case "--spoiler":
			spoiler = true
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			if _, err := fmt.Sscanf(args[i], "%d", &seed); err != nil {
				fmt.Fprintf(os.Stderr, "--seed requires a number, got %q\n", args[i])
				os.Exit(1)
			}
			seedSet = true
		case "--out":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--out requires a file path\n")
				os.Exit(1)
			}
			i++
			outFile = args[i]
		default:
			if tablesDir == "" {
				tablesDir = args[i]
			} else if distFile == "" {
				distFile = args[i]
			}
		}
	}

	if tablesDir == "" || distFile == "" {
		usage()
	}

	// Load and compile Lua game data.
	tables, err := loader.Load(tablesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game data: %v\n", err)
		os.Exit(1)
	}

	settings := defaultSettings()
	if seedSet {
		settings.Seed = seed
	}
	c := cli.New(settings, tables)

	if validate {
		if err := c.Run(cli.Options{DistributionPath: distFile, Validate: true}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Batch mode if an output file is named, --plain is set, or stdout is
	// not a terminal.
	if outFile != "" || plain || !isTerminal() {
		err := c.Run(cli.Options{
			DistributionPath: distFile,
			OutputPath:       outFile,
			Spoiler:          spoiler,
			IncludeOutput:    spoiler,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	d, err := c.Resolve(distFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := tui.Run(d); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultSettings is the base configuration a document's "settings" section
// overrides.
func defaultSettings() *types.Settings {
	return &types.Settings{
		WorldCount:        1,
		Seed:              1,
		ItemPoolValue:     "balanced",
		ShuffleSongItems:  "any",
		ZoraFountain:      "closed",
		GerudoFortress:    "normal",
		EmptyDungeonsMode: "none",
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
