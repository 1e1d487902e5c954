package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	placemarks "github.com/goliatone/go-placemarks"
	"github.com/goliatone/go-placemarks/commands"
	markdowncmd "github.com/goliatone/go-placemarks/internal/commands/markdown"
	placemarkscmd "github.com/goliatone/go-placemarks/internal/commands/placemarks"
	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/migrations"
	"github.com/goliatone/go-placemarks/internal/notices"
)

const usage = `usage: placemarks [-config file] <command> [flags]

commands:
  geocode <address>        resolve an address to coordinates
  reverse <lat> <lon>      resolve coordinates to an address
  render [-file path]      expand map and list shortcodes (stdin by default)
  import [-content-dir d]  import Markdown placemarks
  upgrade                  upgrade data written by older releases
  migrate                  apply database migrations
`

var moduleBuilder = func(cfg placemarks.Config) (*placemarks.Module, error) {
	return placemarks.New(cfg)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("placemarks: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("placemarks", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to a placemarks.yaml file")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("command is required")
	}

	cfg, err := placemarks.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	name, cmdArgs := rest[0], rest[1:]
	switch name {
	case "geocode":
		return runGeocode(ctx, cfg, cmdArgs, stdout)
	case "reverse":
		return runReverse(ctx, cfg, cmdArgs, stdout)
	case "render":
		return runRender(ctx, cfg, cmdArgs, stdin, stdout, stderr)
	case "import":
		return runImport(ctx, cfg, cmdArgs, stdout, stderr)
	case "upgrade":
		return runUpgrade(ctx, cfg, stdout, stderr)
	case "migrate":
		return runMigrate(ctx, cfg, stdout)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
}

func runGeocode(ctx context.Context, cfg placemarks.Config, args []string, stdout io.Writer) error {
	address := strings.TrimSpace(strings.Join(args, " "))
	if address == "" {
		return errors.New("geocode: address is required")
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	coords, err := module.Geocoder().Geocode(ctx, address)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	fmt.Fprintln(stdout, coordinates.Format(coords))
	return nil
}

func runReverse(ctx context.Context, cfg placemarks.Config, args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return errors.New("reverse: latitude and longitude are required")
	}
	coords, ok := coordinates.Validate(args[0] + "," + args[1])
	if !ok {
		return fmt.Errorf("reverse: %q,%q are not valid coordinates", args[0], args[1])
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	address, err := module.Geocoder().ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return fmt.Errorf("reverse: %w", err)
	}
	fmt.Fprintln(stdout, address)
	return nil
}

func runRender(ctx context.Context, cfg placemarks.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "File holding the content to render (stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var content []byte
	var err error
	if *file != "" {
		content, err = os.ReadFile(*file)
	} else {
		content, err = io.ReadAll(stdin)
	}
	if err != nil {
		return fmt.Errorf("render: read content: %w", err)
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	out, list, err := module.RenderContent(ctx, string(content))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprint(stdout, out)
	printNotices(stderr, list)
	return nil
}

func runImport(ctx context.Context, cfg placemarks.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	contentDir := fs.String("content-dir", cfg.Markdown.ContentDir, "Path to the markdown content root")
	pattern := fs.String("pattern", cfg.Markdown.Pattern, "Glob pattern applied when discovering markdown files")
	directory := fs.String("directory", ".", "Directory to import, relative to the content root")
	strict := fs.Bool("strict", false, "Fail when any file could not be imported")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = *contentDir
	cfg.Markdown.Pattern = *pattern

	collector := notices.NewCollector()
	err := dispatchWithModule(ctx, cfg, markdowncmd.ImportDirectoryCommand{
		Directory: *directory,
		Strict:    *strict,
		Notices:   collector,
	})
	printNotices(stderr, collector.List())
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintln(stdout, "markdown import completed")
	return nil
}

func runUpgrade(ctx context.Context, cfg placemarks.Config, stdout, stderr io.Writer) error {
	collector := notices.NewCollector()
	err := dispatchWithModule(ctx, cfg, placemarkscmd.UpgradeCommand{Notices: collector})
	printNotices(stderr, collector.List())
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	fmt.Fprintln(stdout, "upgrade completed")
	return nil
}

func runMigrate(ctx context.Context, cfg placemarks.Config, stdout io.Writer) error {
	cfg.Storage.AutoMigrate = false
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	db := module.Container().BunDB()
	if db == nil {
		return errors.New("migrate: bun storage is not configured")
	}
	runner := migrations.NewRunner(db, placemarks.GetMigrationsFS(),
		migrations.WithLogger(module.Container().Logger()))
	applied, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(stdout, "database is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintln(stdout, "applied "+name)
	}
	return nil
}

// dispatchWithModule builds a module, subscribes its handlers to the
// dispatcher and sends msg through it.
func dispatchWithModule[T command.Message](ctx context.Context, cfg placemarks.Config, msg T) error {
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
		Dispatcher: commands.NewDispatcher(),
	})
	if err != nil {
		return err
	}
	defer registration.Close()

	return dispatcher.Dispatch(ctx, msg)
}

func printNotices(w io.Writer, list notices.List) {
	for _, msg := range list.Updates() {
		fmt.Fprintln(w, "notice: "+msg)
	}
	for _, msg := range list.Errors() {
		fmt.Fprintln(w, "error: "+msg)
	}
}
