package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/db"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/logger"
	"github.com/nekogravitycat/league-admin-backend/internal/roster"
	"github.com/nekogravitycat/league-admin-backend/internal/user"
)

func init() {
	rootCmd.AddCommand(newMigrateCmd(), newRosterCmd())
}

func newMigrateCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Database migration management",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mg, err := db.NewMigrator(cfg.DBDSN, cfg.MigrationsDir, logger.Named("migrate"))
			if err != nil {
				return err
			}
			defer mg.Close()

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return mg.Up()
			case "down":
				return mg.Down(steps)
			default:
				version, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back with down")
	return cmd
}

type exportOptions struct {
	as       string
	out      string
	columns  string
	search   string
	sort     string
	desc     bool
	filters  []string
	inLeague []int64
	skilled  []int64
}

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster utilities",
	}

	var opts exportOptions
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered roster as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	f := export.Flags()
	f.StringVar(&opts.as, "as", "", "Admin user id the export runs as (required)")
	f.StringVarP(&opts.out, "out", "o", "-", "Output file, - for stdout")
	f.StringVar(&opts.columns, "columns", "", "Comma-separated column keys, empty for all")
	f.StringVar(&opts.search, "search", "", "Search term")
	f.StringVar(&opts.sort, "sort", string(roster.SortName), "Sort field")
	f.BoolVar(&opts.desc, "desc", false, "Sort descending")
	f.StringSliceVar(&opts.filters, "filter", nil, "Boolean filter to enable, repeatable")
	f.Int64SliceVar(&opts.inLeague, "sport-in-league", nil, "Sport id the user plays in a league, repeatable")
	f.Int64SliceVar(&opts.skilled, "sport-with-skill", nil, "Sport id the user has a skill for, repeatable")
	_ = export.MarkFlagRequired("as")

	cmd.AddCommand(export)
	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	ctx := cmd.Context()

	columns, err := roster.ResolveColumns(opts.columns)
	if err != nil {
		return err
	}
	q, err := buildQuery(opts)
	if err != nil {
		return err
	}

	lg := logger.Named("export")
	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptionsFrom(cfg.DBMaxConns, cfg.DBMaxConnIdle), lg)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := user.NewService(user.NewPgxRepository(pool), auth.NewBcryptPasswordHasher(), nil, user.ServiceConfig{Logger: lg})
	loader := roster.NewLoader(roster.LoaderDeps{
		Source:  roster.NewPgxSource(pool),
		Admins:  users,
		Decoder: roster.NewRowDecoder(billing.NewCalculator(cfg.TaxRate), cfg.RosterStrictRows, lg, nil),
		Logger:  lg,
	})

	rows, err := loader.FetchAll(ctx, opts.as, q)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "-" {
		file, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer file.Close()
		w = file
	}

	if err := roster.WriteCSV(w, rows, columns); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %s users\n", humanize.Comma(int64(len(rows))))
	return nil
}

func buildQuery(opts exportOptions) (roster.Query, error) {
	filters := roster.DefaultFilters()
	for _, raw := range opts.filters {
		key := roster.FilterKey(strings.TrimSpace(raw))
		if filters.Enabled(key) {
			continue
		}
		if err := filters.Toggle(key); err != nil {
			return roster.Query{}, fmt.Errorf("%w: %s", err, raw)
		}
	}
	filters.SportsInLeague = append(filters.SportsInLeague, opts.inLeague...)
	filters.SportsWithSkill = append(filters.SportsWithSkill, opts.skilled...)

	field := roster.SortField(opts.sort)
	if !field.Valid() {
		return roster.Query{}, fmt.Errorf("%w: %s", roster.ErrUnknownSort, opts.sort)
	}
	dir := roster.SortAsc
	if opts.desc {
		dir = roster.SortDesc
	}

	return roster.Query{
		Search:        opts.search,
		Filters:       filters,
		SortField:     field,
		SortDirection: dir,
		Page:          1,
		PageSize:      1,
	}, nil
}
