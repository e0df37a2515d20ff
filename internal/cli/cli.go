package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kintree"

	// stdinArg reads the family document from standard input.
	stdinArg = "-"

	// stdoutArg as an output path writes to standard output.
	stdoutArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP hooks are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerDebugHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Kintree lays out family trees",
		Long:         `Kintree turns a genealogy dataset into a navigable family tree: couples share one box, generations line up in rows, and branches can be collapsed and focused.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kintree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Data Source
// =============================================================================

// sourceFlags selects where the family document comes from: a JSON file
// argument, standard input, or a MongoDB collection.
type sourceFlags struct {
	mongo mongo.Config
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mongo.URI, "mongo-uri", "", "read people from MongoDB instead of a file")
	cmd.Flags().StringVar(&f.mongo.Database, "mongo-db", "", "MongoDB database")
	cmd.Flags().StringVar(&f.mongo.Collection, "mongo-collection", mongo.DefaultCollection, "MongoDB collection")
}

func (f *sourceFlags) fromMongo() bool { return f.mongo.URI != "" }

// load reads the document named by input, or from MongoDB when --mongo-uri
// is set. It returns the document and a short name for messages and
// default output paths.
func (f *sourceFlags) load(ctx context.Context, input string) (*family.Document, string, error) {
	if f.fromMongo() {
		if input != "" {
			return nil, "", fmt.Errorf("both %s and --mongo-uri given", input)
		}
		spinner := newSpinnerWithContext(ctx, "Reading from MongoDB...")
		spinner.Start()
		doc, err := mongo.Load(ctx, f.mongo)
		spinner.Stop()
		if err != nil {
			if spinner.Cancelled() {
				return nil, "", ctx.Err()
			}
			return nil, "", err
		}
		return doc, f.mongo.Database + "." + f.mongo.Collection, nil
	}

	switch input {
	case "":
		return nil, "", fmt.Errorf("no input: pass a family JSON file, %q for stdin, or --mongo-uri", stdinArg)
	case stdinArg:
		doc, err := family.ReadDocument(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return doc, "family", nil
	default:
		doc, err := family.ReadFile(input)
		if err != nil {
			return nil, "", err
		}
		return doc, strings.TrimSuffix(input, filepath.Ext(input)), nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionFlags holds layout options given on the command line and the
// optional options file they override.
type optionFlags struct {
	config string
	opts   pipeline.Options
}

func (f *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML options file")
	cmd.Flags().StringVarP(&f.opts.Anchor, "anchor", "a", "", "person at generation 0 (default: first person)")
	cmd.Flags().IntVar(&f.opts.ExpandBands, "expand-bands", 0, "generation bands expanded initially (default 2)")
	cmd.Flags().Float64Var(&f.opts.NodeWidth, "node-width", 0, "node box width (default 180)")
	cmd.Flags().Float64Var(&f.opts.NodeHeight, "node-height", 0, "node box height (default 64)")
	cmd.Flags().Float64Var(&f.opts.SepX, "sep-x", 0, "horizontal gap between boxes (default 32)")
	cmd.Flags().Float64Var(&f.opts.SepY, "sep-y", 0, "vertical gap between generations (default 90)")
	cmd.Flags().Float64Var(&f.opts.ForestGap, "forest-gap", 0, "gap between separate trees (default 140)")
	_ = cmd.RegisterFlagCompletionFunc("anchor", completeAnchor)
	_ = cmd.MarkFlagFilename("config", "toml")
}

// resolve loads the options file, if any, and applies the flags on top.
func (f *optionFlags) resolve(logger *log.Logger) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		fileOpts, err := pipeline.LoadOptionsFile(f.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		logger.Debug("loaded options file", "path", f.config)
		opts = fileOpts
	}
	opts.Merge(f.opts)
	opts.Logger = logger
	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	formats := strings.Split(s, ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}
	return formats
}

// inputArg returns the first positional argument or "".
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
