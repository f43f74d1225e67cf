package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/internal/service"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	mysqlstore "surveyor/pkg/store/mysql"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// withRepository loads config, opens and migrates the store, then runs fn
func withRepository(ctx context.Context, fn func(cfg *config.Config, repo *mysqlstore.Repository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Logger); err != nil {
		return err
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	return fn(cfg, repo)
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	os.Stdout.Write(pretty.Pretty(data))
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid experiment id %q", arg)
	}
	return id, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and sync reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				catalog := service.NewCatalogService(repo, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry())
				if err := catalog.Sync(cmd.Context(), cfg.Providers); err != nil {
					return err
				}
				fmt.Println("schema migrated")
				return nil
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var (
		file     string
		noExpand bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an experiment from a YAML definition and expand it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var def model.ExperimentDefinition
			if err := readYAML(file, &def); err != nil {
				return err
			}

			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				expander := service.NewExpanderService(repo, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry(), providerNames(cfg))

				var (
					experiment *model.Experiment
					created    int
					err        error
				)
				if noExpand {
					experiment, err = expander.CreateExperiment(cmd.Context(), &def)
				} else {
					experiment, created, err = expander.CreateAndExpand(cmd.Context(), &def)
				}
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(map[string]any{"experiment": experiment, "work_units": created})
				}
				fmt.Printf("experiment %d (#%d) created with %d configs and %d work units\n",
					experiment.ID, experiment.Number, len(experiment.Configs), created)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Experiment definition YAML")
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "Create the experiment without work units")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <experiment-id>",
		Short: "Show work unit counts for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				summary, err := service.NewExperimentService(repo).GetSummary(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(summary)
				}

				c := summary.Counts
				fmt.Printf("experiment %d %q: %s\n", summary.Experiment.ID, summary.Experiment.Name, summary.Experiment.Status)
				fmt.Printf("  pending %d  locked %d  running %d  retry %d  complete %d  failed %d  (total %d)\n",
					c.Pending, c.Locked, c.Running, c.Retry, c.Complete, c.Failed, summary.Total)
				return nil
			})
		},
	}
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <experiment-id>",
		Short: "Cancel an experiment; pending units are never claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				if err := service.NewExperimentService(repo).Cancel(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Printf("experiment %d cancelled\n", id)
				return nil
			})
		},
	}
}

func newProfilesCmd() *cobra.Command {
	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage profile sets",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a profile set from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			var set model.ProfileSet
			if err := readYAML(file, &set); err != nil {
				return err
			}

			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				created, err := service.NewProfileService(repo).CreateSet(cmd.Context(), &set)
				if err != nil {
					return err
				}
				fmt.Printf("profile set %s imported with %d profiles\n", created.Name, len(created.Profiles))
				return nil
			})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "Profile set YAML")
	_ = importCmd.MarkFlagRequired("file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profile sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(cfg *config.Config, repo *mysqlstore.Repository) error {
				sets, err := service.NewProfileService(repo).ListSets(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(sets)
				}
				for _, s := range sets {
					fmt.Printf("%-24s %s\n", s.Name, s.Description)
				}
				return nil
			})
		},
	}

	profilesCmd.AddCommand(importCmd, listCmd)
	return profilesCmd
}
