package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"lms-client/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewArchiveCmd stores and lists aggregation snapshots in Postgres.
func NewArchiveCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and list aggregation snapshots",
	}
	cmd.AddCommand(newArchiveSaveCmd(configPath))
	cmd.AddCommand(newArchiveListCmd(configPath))
	return cmd
}

func newArchiveSaveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Aggregate now and store the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			viewer, token, err := env.session.Current(ctx)
			if err != nil {
				return err
			}
			results, soft, err := env.agg.Aggregate(ctx, viewer, token)
			if err != nil {
				return err
			}
			for _, e := range soft {
				log.Printf("skipped %v", e)
			}

			archive, cleanup, err := openArchive(ctx, env)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := archive.Save(ctx, viewer, time.Now(), results)
			if err != nil {
				return err
			}
			fmt.Printf("snapshot %d stored (%d results)\n", id, len(results))
			return nil
		},
	}
}

func newArchiveListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			viewer, _, err := env.session.Current(ctx)
			if err != nil {
				return err
			}

			archive, cleanup, err := openArchive(ctx, env)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := archive.List(ctx, viewer.UserID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no snapshots")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTAKEN\tRESULTS")
			for _, rec := range records {
				fmt.Fprintf(w, "%d\t%s\t%d\n", rec.ID, rec.TakenAt.Format(time.RFC3339), rec.ResultCount)
			}
			return w.Flush()
		},
	}
}

func openArchive(ctx context.Context, env *env) (*postgres.Archive, func(), error) {
	if env.cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, env.cfg); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.Connect(ctx, env.cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewArchive(pool), pool.Close, nil
}
