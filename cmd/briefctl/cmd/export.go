package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/repository"
	"github.com/spf13/cobra"
)

func ExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every stored briefing as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(database *sqlx.DB, _ string) error {
				w := cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}

				n, err := exportBriefings(cmd.Context(), repository.NewBriefingRepository(database), w)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d briefings\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}

func exportBriefings(ctx context.Context, repo repository.BriefingRepository, w io.Writer) (int, error) {
	briefings, err := repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list briefings: %w", err)
	}
	if briefings == nil {
		briefings = []*model.Briefing{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(briefings); err != nil {
		return 0, err
	}
	return len(briefings), nil
}
