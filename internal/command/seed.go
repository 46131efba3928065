package command

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stolasapp/tally/internal/seed"
)

func seedCommand() *cobra.Command {
	var seedFlag string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with fake invoices and a demo user",
		Long: "Generates invoices for a handful of fake customers and creates the demo user\n" +
			"(" + seed.DemoEmail + " / " + seed.DemoPassword + "). Existing invoices and users\n" +
			"are left untouched. The generator seed comes from --seed, then " + seed.EnvSeed + ",\n" +
			"then a random value.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			value := seed.Seed()
			if seedFlag != "" {
				if value, err = strconv.ParseUint(seedFlag, 10, 64); err != nil {
					return err
				}
			}
			return seed.Run(cmd.Context(), store, logger, value)
		},
	}
	cmd.Flags().StringVar(&seedFlag, "seed", "", "generator seed")
	return cmd
}
