// Command swisscut exports and inspects tournaments without running the server.
//
// Usage:
//
//	swisscut report 12 13 --out ./reports
//	swisscut report --all --out ./reports
//	swisscut standings 12
//	swisscut identities --side runner
//	swisscut schema | psql "$DATABASE_URL"
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/config"
	"github.com/Dosada05/swisscut/db"
	"github.com/Dosada05/swisscut/export"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
	"github.com/Dosada05/swisscut/services"
	"github.com/Dosada05/swisscut/storage"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "swisscut",
		Short:        "Swiss standings, top cut and NRTM export tool",
		SilenceUsage: true,
	}
	root.AddCommand(reportCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(identitiesCmd())
	root.AddCommand(schemaCmd())
	return root
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid tournament id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// withDB открывает базу на время одной команды.
func withDB(fn func(ctx context.Context, conn *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, conn)
}

func reportCmd() *cobra.Command {
	var (
		outDir string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "report [tournament-id...]",
		Short: "Export NRTM reports; one file per tournament with --out, JSON to stdout otherwise",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass tournament ids or --all")
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withDB(func(ctx context.Context, conn *sql.DB) error {
				repo := repositories.NewPostgresTournamentRepository(conn)
				if all {
					if ids, err = repo.ListIDs(ctx); err != nil {
						return err
					}
				}
				svc := services.NewReportService(repo, nil, nil, logger)
				start := time.Now()
				reports, err := svc.BuildReports(ctx, ids)
				if err != nil {
					return err
				}
				logger.Info("reports built", "count", len(reports), "duration", time.Since(start).Round(time.Millisecond))
				return writeReports(cmd.OutOrStdout(), outDir, ids, reports)
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write tournament-<id>.json files into")
	cmd.Flags().BoolVar(&all, "all", false, "export every stored tournament")
	return cmd
}

func writeReports(stdout io.Writer, outDir string, ids []int, reports []*export.Report) error {
	if outDir == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for i, r := range reports {
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report %d: %w", ids[i], err)
		}
		path := filepath.Join(outDir, filepath.Base(storage.ReportKey(ids[i])))
		if err := os.WriteFile(path, append(body, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(stdout, path)
	}
	return nil
}

func standingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings <tournament-id>",
		Short: "Print the current Swiss standings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withDB(func(ctx context.Context, conn *sql.DB) error {
				svc := services.NewStandingsService(repositories.NewPostgresTournamentRepository(conn), nil, logger)
				rows, err := svc.SwissStandings(ctx, ids[0])
				if err != nil {
					return err
				}
				return printStandings(cmd.OutOrStdout(), rows)
			})
		},
	}
}

func printStandings(w io.Writer, rows []services.StandingView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tMP\tSOS\tESOS\tSIDES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.3f\t%s\n", r.Rank, r.Name, r.MatchPoints, r.SOS, r.ESOS, r.SideBias)
	}
	return tw.Flush()
}

func identitiesCmd() *cobra.Command {
	var side string
	cmd := &cobra.Command{
		Use:   "identities",
		Short: "List identities for a side, standard-legal first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCatalog()
			if err != nil {
				return err
			}
			store, err := catalog.OpenStore(cfg.CatalogCachePath)
			if err != nil {
				return err
			}
			defer store.Close()

			c := catalog.New(store, catalog.NewClient(cfg.CatalogClient(), logger), time.Now, cfg.CatalogTTL, logger)
			names, err := c.IdentityNames(cmd.Context(), models.Side(side))
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&side, "side", string(models.SideCorp), "corp or runner")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema)
			return err
		},
	}
}
