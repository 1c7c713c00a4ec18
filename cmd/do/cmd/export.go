package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/repository"
	"github.com/labworks/tracker/internal/validation"
)

func ExportCmd() *cobra.Command {
	var as, output string

	cmd := &cobra.Command{
		Use:       "export goals|activities",
		Short:     "Write the goals or activities visible to a user as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"goals", "activities"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			viewer, err := a.Users.ByUsername(validation.NormalizeUsername(as))
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return fmt.Errorf("no user named %q", as)
				}
				return err
			}

			var render func(io.Writer, *model.User) error
			switch args[0] {
			case "goals":
				render = a.ExportService.WriteGoalsCSV
			case "activities":
				render = a.ExportService.WriteActivitiesCSV
			default:
				return fmt.Errorf("unknown export %q, want goals or activities", args[0])
			}

			if output == "" || output == "-" {
				return render(cmd.OutOrStdout(), viewer)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			err = render(f, viewer)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "username whose visibility applies")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

