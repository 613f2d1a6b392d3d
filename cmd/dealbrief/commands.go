package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/cli"
	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/extract"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
	"github.com/hyperjump/dealbrief/internal/tui"
	"github.com/hyperjump/dealbrief/pkg/utils"
)

var statusChoices = []string{string(models.StatusPending), string(models.StatusProcessed), string(models.StatusFailed)}

// listFlags are the filter/sort/page flags shared by list and tui.
type listFlags struct {
	rawQuery string
	params   models.ListParams
}

func (l *listFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.rawQuery, "query", "", "dashboard query string (e.g. status=processed&page=2)")
	fs.StringVar(&l.params.Search, "search", "", "full-text search")
	fs.StringVar(&l.params.Status, "status", "", "status filter")
	fs.StringVar(&l.params.Sector, "sector", "", "sector filter")
	fs.StringVar(&l.params.Company, "company", "", "company filter")
	fs.StringVar(&l.params.Stage, "stage", "", "stage filter")
	fs.StringVar(&l.params.Category, "category", "", "category filter")
	fs.StringVar(&l.params.Ordering, "ordering", "", "ordering token")
	fs.IntVar(&l.params.Page, "page", 0, "1-based page")
}

// Params merges the flags over the parsed --query string; explicit flags win and,
// as in the dashboards, a changed field resets the page unless --page is given.
func (l *listFlags) Params() (models.ListParams, error) {
	p := query.Parse(l.rawQuery)
	for _, f := range append(append([]models.Field{}, models.FilterFields...), models.FieldOrdering) {
		if v := strings.TrimSpace(l.params.Get(f)); v != "" {
			p = p.With(f, v)
		}
	}
	if l.params.Page > 0 {
		p.Page = l.params.Page
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Ordering != "" && !models.ValidOrdering(p.Ordering) {
		return p, cli.InvalidChoice("ordering", p.Ordering, models.Orderings)
	}
	if p.Status != "" && !models.Status(p.Status).Valid() {
		return p, cli.InvalidChoice("status", p.Status, statusChoices)
	}
	return p, nil
}

// formatFlag registers --format on the one-shot commands.
func formatFlag(fs *flag.FlagSet) *string {
	return fs.String("format", string(cli.OutputText), "output format: text or json")
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var common commonFlags
	var lf listFlags
	common.register(fs)
	lf.register(fs)
	format := formatFlag(fs)
	_ = fs.Parse(argsReorder(args))

	out, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	params, err := lf.Params()
	if err != nil {
		return err
	}
	cfg, logger, deals, err := oneShot(&common)
	if err != nil {
		return err
	}
	defer logger.Sync()

	page, err := deals.FetchList(context.Background(), params)
	if err != nil {
		return errors.New(client.UserMessage(err, client.MsgListFailed))
	}
	return cli.WriteDealPage(os.Stdout, page, params, cfg.Dashboard.PageSize, out)
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	format := formatFlag(fs)
	_ = fs.Parse(argsReorder(args))

	if fs.NArg() != 1 {
		return errors.New("usage: dealbrief show [flags] <id>")
	}
	out, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	_, logger, deals, err := oneShot(&common)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deal, err := deals.FetchOne(context.Background(), fs.Arg(0))
	if err != nil {
		return errors.New(client.UserMessage(err, client.MsgNotFound))
	}
	return cli.WriteDeal(os.Stdout, deal, out)
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	file := fs.String("file", "", `read the deal text from a document; "-" reads stdin`)
	format := formatFlag(fs)
	_ = fs.Parse(argsReorder(args))

	out, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	text, err := readCreateInput(fs.Args(), *file, os.Stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New(dashboard.MsgEmptySubmission)
	}
	_, logger, deals, err := oneShot(&common)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deal, err := deals.CreateDeal(context.Background(), text)
	if err != nil {
		return errors.New(client.UserMessage(err, client.MsgCreateFailed))
	}
	return cli.WriteCreated(os.Stdout, deal, out)
}

// readCreateInput returns the text for a new deal: positional arguments joined by
// spaces, else the document at file ("-" is stdin), else stdin.
func readCreateInput(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" && file != "-" {
		text, err := extract.NewExtractor().Extract(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filepath.Base(file), err)
		}
		return text, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// oneShot prepares the config, logger and client for a single API call. Logging
// is kept at warnings so command output stays readable.
func oneShot(common *commonFlags) (*config.Config, *zap.Logger, *client.Client, error) {
	cfg, _, err := common.setup()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = newLogger(cfg); err != nil {
			return nil, nil, nil, err
		}
	}
	deals, err := newClient(cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, deals, nil
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	var common commonFlags
	var lf listFlags
	common.register(fs)
	lf.register(fs)
	logFile := fs.String("log-file", "", "write logs to this file (the terminal is owned by the dashboard)")
	_ = fs.Parse(args)

	params, err := lf.Params()
	if err != nil {
		return err
	}
	cfg, _, err := common.setup()
	if err != nil {
		return err
	}
	logger, err := utils.NewFileLogger(*logFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	deals, err := newClient(cfg, logger, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	return tui.Run(ctx, tui.New(ctx, deals, params, cfg.Dashboard.PageSize, logger))
}

func runConfig(args []string) error {
	if len(args) < 1 || args[0] != "init" {
		return errors.New("usage: dealbrief config init [--force] [path]")
	}
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(argsReorder(args[1:]))

	path := "config.yaml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := defaultFileConfig()
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// defaultFileConfig is the starting config written by "config init": defaults
// with storage and inbox paths relative to the config file.
func defaultFileConfig() *config.Config {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:    "./data/deals.db",
			SearchIndexPath: "./data/bleve",
		},
		Inbox: config.InboxConfig{Directories: []string{"./inbox"}},
	}
	config.ApplyDefaults(cfg)
	return cfg
}
