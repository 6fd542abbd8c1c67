package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/journey-backend/internal/app"
	"github.com/yungbote/journey-backend/internal/data/db"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var addr string
	serve := func(cmd *cobra.Command, args []string) error { return runServe(addr) }

	cmd := &cobra.Command{
		Use:           "journey",
		Short:         "21-day journey habit tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serve,
	})
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(templatesCmd())
	return cmd
}

func runServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		return err
	}
	if addr == "" {
		addr = ":" + a.Cfg.Port
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.Log.Info("shutdown signal received")
		return nil
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			svc, err := db.Open(log)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer svc.Close()
			if err := db.Migrate(svc.DB()); err != nil {
				return err
			}
			log.Info("migration complete", "driver", svc.Driver())
			return nil
		},
	}
}

type templateView struct {
	Category    string            `yaml:"category"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Tasks       map[string]string `yaml:"tasks"`
}

func templatesCmd() *cobra.Command {
	var (
		day       int
		interests []string
		path      string
	)
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Print the skill trees generated for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("file") {
				path = os.Getenv("JOURNEY_TEMPLATES_YAML")
			}
			tpl, err := modjourney.LoadTemplates(path)
			if err != nil {
				return err
			}
			trees, err := modjourney.GenerateSkillTrees(uuid.New(), day, interests, tpl)
			if err != nil {
				return err
			}
			out := make([]templateView, 0, len(trees))
			for _, tree := range trees {
				view := templateView{
					Category:    string(tree.Category),
					Title:       tree.Title,
					Description: tree.Description,
					Tasks:       make(map[string]string, len(tree.Tasks)),
				}
				for _, task := range tree.Tasks {
					view.Tasks[string(task.Slot)] = task.Title
				}
				out = append(out, view)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(map[string]any{"day": day, "skill_trees": out})
		},
	}
	cmd.Flags().IntVar(&day, "day", 1, "journey day (1..21)")
	cmd.Flags().StringSliceVar(&interests, "interests", nil, "categories to include (default all)")
	cmd.Flags().StringVar(&path, "file", "", "template YAML to use instead of the embedded table (default $JOURNEY_TEMPLATES_YAML)")
	return cmd
}
