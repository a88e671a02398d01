package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ehwaz/internal"
	pkgconfig "github.com/starford/ehwaz/pkg/config"
)

// consoleNotifier prints publish-cycle progress to the terminal and asks
// for confirmation on destructive operations.
type consoleNotifier struct {
	yes bool
}

func (n *consoleNotifier) Notify(msg string) {
	fmt.Println(msg)
}

func (n *consoleNotifier) Confirm(prompt string) bool {
	if n.yes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (n *consoleNotifier) PresentDebug(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, string(data))
}

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithNotifier(&consoleNotifier{yes: cmd.Bool("yes")}),
	}, nil
}

func requirePath(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", fmt.Errorf("a document path is required")
	}
	return path, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	yesFlag := &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip confirmation prompts",
	}

	cmd := &cli.Command{
		Name:  "ehwaz",
		Usage: "Publish Markdown vault documents to a remote content service",
		Flags: []cli.Flag{configFlag, yesFlag},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API, file watcher, and SSE server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.Run(ctx, opts...)
				},
			},
			{
				Name:      "publish",
				Usage:     "Publish a document to the remote service",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					path, err := requirePath(cmd)
					if err != nil {
						return err
					}
					out, err := internal.PublishOne(ctx, path, opts...)
					if err != nil {
						return err
					}
					return printJSON(out)
				},
			},
			{
				Name:      "preview",
				Usage:     "Preview backlink conversion without publishing",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					path, err := requirePath(cmd)
					if err != nil {
						return err
					}
					res, err := internal.PreviewOne(ctx, path, opts...)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete the remote object and strip local sync state",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					path, err := requirePath(cmd)
					if err != nil {
						return err
					}
					return internal.DeleteOne(ctx, path, opts...)
				},
			},
			{
				Name:      "unlink",
				Usage:     "Strip local sync state without touching the remote service",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					path, err := requirePath(cmd)
					if err != nil {
						return err
					}
					return internal.UnlinkOne(ctx, path, opts...)
				},
			},
			{
				Name:  "ping",
				Usage: "Probe connectivity against the remote service",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					status, err := internal.Ping(ctx, opts...)
					if err != nil {
						return err
					}
					return printJSON(status)
				},
			},
			{
				Name:  "mcp",
				Usage: "Run the MCP server on stdio",
				Action: func(_ context.Context, cmd *cli.Command) error {
					opts, err := loadOptions(cmd)
					if err != nil {
						return err
					}
					return internal.ServeMCP(opts...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
