package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/resolve"
	pkgconfig "github.com/starford/raido/pkg/config"
)

// workspace discovers the project from the working directory and loads its
// configuration.
func workspace() (*internal.Config, *internal.Project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	project, err := internal.FindProject(wd)
	if err != nil {
		return nil, nil, err
	}
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(project.ConfigPath(), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, project, nil
}

// buildEngine wires the sync engine with a quiet stderr logger so command
// output on stdout stays parseable.
func buildEngine() (*engine.Engine, error) {
	cfg, project, err := workspace()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return internal.BuildEngine(cfg, project, nil, logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initAction(ctx context.Context, cmd *cli.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	project := &internal.Project{Root: wd}
	if _, err := os.Stat(project.ConfigPath()); err == nil {
		return fmt.Errorf("workspace %s: %w", project.ConfigPath(), apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Join(project.Root, internal.MetaDir), 0o755); err != nil {
		return err
	}
	cfg := internal.NewDefaultConfig()
	cfg.Remote.BaseURL = cmd.String("base-url")
	cfg.Remote.WorkspaceID = int64(cmd.Int("workspace"))
	cfg.Remote.Token = "${RAIDO_TOKEN}"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(project.ConfigPath(), data, 0o644); err != nil {
		return err
	}
	fmt.Printf("initialized workspace at %s\n", project.Root)
	return nil
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	res, err := eng.Sync(ctx, engine.SyncOptions{
		Force: cmd.Bool("force"),
		Clean: cmd.Bool("clean"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func pushAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	res, err := eng.Push(ctx, engine.PushOptions{
		Paths: cmd.Args().Slice(),
		Clean: cmd.Bool("clean"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func pullAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	res, err := eng.Pull(ctx, engine.PullOptions{
		Paths:      cmd.Args().Slice(),
		Force:      cmd.Bool("force"),
		CleanLocal: cmd.Bool("clean"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	res, err := eng.Status()
	if err != nil {
		return err
	}
	if err := printJSON(res); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}
	return eng.Watch(ctx, func(res *engine.StatusResult) {
		_ = printJSON(res)
	})
}

func resolveAction(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: raido resolve <identifier>")
	}
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	entries, err := eng.Store().Load()
	if err != nil {
		return err
	}
	idx := resolve.Open(eng.IndexFile(), entries)
	matches := resolve.Resolve(idx, query)
	if matches == nil {
		matches = []resolve.Match{}
	}
	return printJSON(matches)
}

func indexAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	entries, err := eng.Store().Load()
	if err != nil {
		return err
	}
	if err := resolve.SaveCache(eng.IndexFile(), entries); err != nil {
		return err
	}
	fmt.Printf("indexed %d objects\n", len(entries))
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, project, err := workspace()
	if err != nil {
		return err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithProject(project),
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	return mcpserver.New(eng).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Mirror a remote workspace's programmable objects as local XanoScript files",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Initialize a workspace in the current directory",
				Action: initAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Metadata API base URL",
					},
					&cli.IntFlag{
						Name:    "workspace",
						Aliases: []string{"w"},
						Usage:   "Remote workspace id",
					},
				},
			},
			{
				Name:   "sync",
				Usage:  "Fetch all remote objects, diff against the store, and materialize changes",
				Action: syncAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite local edits"},
					&cli.BoolFlag{Name: "clean", Usage: "Purge entries and files for remotely removed objects"},
				},
			},
			{
				Name:      "push",
				Usage:     "Upload local changes to the remote workspace",
				ArgsUsage: "[paths...]",
				Action:    pushAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "clean", Usage: "Delete remote objects whose local file is gone"},
				},
			},
			{
				Name:      "pull",
				Usage:     "Write remote content to local files",
				ArgsUsage: "[paths...]",
				Action:    pullAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite local edits"},
					&cli.BoolFlag{Name: "clean", Usage: "Delete local files for objects missing remotely"},
				},
			},
			{
				Name:   "status",
				Usage:  "Report workspace drift",
				Action: statusAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "Keep watching and re-report on changes"},
				},
			},
			{
				Name:      "resolve",
				Usage:     "Resolve an identifier to tracked files",
				ArgsUsage: "<identifier>",
				Action:    resolveAction,
			},
			{
				Name:   "index",
				Usage:  "Rebuild the persisted search index from the object store",
				Action: indexAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the local read-only HTTP surface with the drift watcher",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
