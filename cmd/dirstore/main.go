package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/s3fs-fuse/dirstore/internal/config"
	"github.com/s3fs-fuse/dirstore/internal/storage"
	"github.com/s3fs-fuse/dirstore/internal/storage/types"
	"github.com/urfave/cli/v3"
)

// withBackend loads the config, opens the configured backend and runs fn.
func withBackend(ctx context.Context, cmd *cli.Command, fn func(types.Backend) error) error {
	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	backend, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Storage.Backend, err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("close backend", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Debug("backend ready",
		slog.String("backend", cfg.Storage.Backend),
		slog.Bool("implied_dirs", cfg.Storage.ImpliedDirs))

	return fn(backend)
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, n, cmd.NArg())
	}
	return nil
}

// probeCommand prints the result of a boolean query on one path.
func probeCommand(out io.Writer, name, usage string, probe func(types.Backend, context.Context, string) (bool, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "PATH",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return withBackend(ctx, cmd, func(b types.Backend) error {
				ok, err := probe(b, ctx, cmd.Args().Get(0))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, strconv.FormatBool(ok))
				return err
			})
		},
	}
}

// pathCommand runs a mutating operation on one path.
func pathCommand(name, usage string, op func(types.Backend, context.Context, string) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "PATH",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return withBackend(ctx, cmd, func(b types.Backend) error {
				path := cmd.Args().Get(0)
				if err := op(b, ctx, path); err != nil {
					return err
				}
				slog.Info(name, slog.String("path", path))
				return nil
			})
		},
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "dirstore",
		Usage: "Directory operations over local and object storage backends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (defaults to a local ./data backend, created on first write)",
				Sources: cli.EnvVars("DIRSTORE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			probeCommand(out, "isdir", "Print whether PATH is a directory", types.Backend.IsDir),
			probeCommand(out, "isfile", "Print whether PATH is a file", types.Backend.IsFile),
			{
				Name:      "mv",
				Usage:     "Move a file or directory tree",
				ArgsUsage: "SRC DST",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Replace an existing destination",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					return withBackend(ctx, cmd, func(b types.Backend) error {
						src, dst := cmd.Args().Get(0), cmd.Args().Get(1)
						if err := b.Move(ctx, src, dst, cmd.Bool("overwrite")); err != nil {
							return err
						}
						slog.Info("mv", slog.String("src", src), slog.String("dst", dst))
						return nil
					})
				},
			},
			pathCommand("mkdir", "Create PATH and any missing parents", types.Backend.MakeDirs),
			pathCommand("rmtree", "Remove PATH and everything below it", types.Backend.RemoveTree),
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
