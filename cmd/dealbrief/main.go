// Package main is the dealbrief CLI entry point.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/dealbrief/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present (for development), and a missing default file
// falls back to defaults plus environment. Returns the path actually loaded, or ""
// when no file was read.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg, err := config.FromEnv()
			return cfg, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	var err error
	switch command {
	case "api":
		err = runAPI(args)
	case "web":
		err = runWeb(args)
	case "tui":
		err = runTUI(args)
	case "inbox":
		err = runInbox(args)
	case "list":
		err = runList(args)
	case "show":
		err = runShow(args)
	case "create":
		err = runCreate(args)
	case "config":
		err = runConfig(args)
	case "version", "--version", "-v":
		fmt.Printf("dealbrief version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that reads the config file.
type commonFlags struct {
	configPath string
	debug      bool
	apiURL     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", defaultConfigPath, "config file path")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
	fs.StringVar(&c.apiURL, "api", "", "Deals API base URL (overrides config and "+config.EnvAPIURL+")")
}

// setup loads the config and applies the flag overrides.
func (c *commonFlags) setup() (*config.Config, string, error) {
	cfg, resolved, err := loadConfig(c.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	cfg.Debug = cfg.Debug || c.debug
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}
	return cfg, resolved, nil
}

// newClient returns a Deals API client for cfg.
func newClient(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*client.Client, error) {
	opts := []client.Option{client.WithTimeout(cfg.API.Timeout), client.WithLogger(logger)}
	if m != nil {
		opts = append(opts, client.WithMetrics(m))
	}
	return client.New(cfg.API.BaseURL, opts...)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse sees them, e.g.
// "dealbrief show <id> --format json".
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printUsage() {
	fmt.Println(`dealbrief - deal brief dashboard

Usage:
  dealbrief api [flags]             Start the reference Deals API
  dealbrief web [flags]             Start the web dashboard
  dealbrief tui [flags]             Open the terminal dashboard
  dealbrief inbox [flags]           Watch inbox directories and submit documents as deals
  dealbrief list [flags]            List deals
  dealbrief show [flags] <id>       Show one deal
  dealbrief create [flags] [text]   Create a deal from text, --file, or stdin
  dealbrief config init [flags]     Write a config file with defaults
  dealbrief version                 Show version
  dealbrief help                    Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/dealbrief/config.yaml,
                     ./config.yaml when present)
  --debug            Enable debug logging
  --api string       Deals API base URL (default from config, DEALBRIEF_API_URL, or
                     http://localhost:8000)

List / TUI Flags:
  --search, --status, --sector, --company, --stage, --category string
                     Filters (status: pending, processed, failed; stage: Seed,
                     "Series A", "Series B"; category: fintech, "deep tech",
                     "climate tech")
  --ordering string  -created_at (default), created_at, -updated_at, updated_at,
                     status, -status
  --page int         1-based page
  --query string     Dashboard query string, e.g. "status=processed&page=2"

Output Flags (list, show, create):
  --format string    text (default) or json

Create Flags:
  --file string      Read the deal text from a document (txt, md, pdf, docx, odt, rtf,
                     xlsx); "-" reads stdin

Examples:
  dealbrief api --config ./config.yaml
  dealbrief web --api http://localhost:8000
  dealbrief list --status processed --ordering -updated_at --page 2
  dealbrief show 3f2c9a1e-... --format json
  dealbrief create --file memo.pdf
  echo "Acme raises a seed round" | dealbrief create
  dealbrief inbox --config ./config.yaml`)
}
