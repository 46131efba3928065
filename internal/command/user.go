package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/storage"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userDeleteCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create or update a user",
		Long: "Creates a user that signs in with the provided email and password. Running it\n" +
			"again for an existing email replaces that user's password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			email := args[0]
			user, err := store.GetUserByEmail(cmd.Context(), email)
			switch {
			case err == nil:
				logger.InfoContext(cmd.Context(), "updating existing user", slog.String("email", email))
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
			user.Email = email
			if name != "" {
				user.Name = name
			}

			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}
			if len(passwd) < sec.MinPasswordLen {
				return errors.New("password must be at least 6 characters")
			}
			if user.PasswordHash, err = sec.HashPassword(passwd); err != nil {
				return err
			}
			if user, err = store.UpsertUser(cmd.Context(), user); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "saved user",
				slog.String("id", user.ID),
				slog.String("email", user.Email),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name of the user")
	return cmd
}

func userDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete user",
		Long:  "Permanently deletes the user. This operation is irreversible.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			email := args[0]
			logger = logger.With(slog.String("email", email))
			user, err := store.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			ok, err := confirm("Are you sure you want to delete this user?")
			if !ok || err != nil {
				logger.InfoContext(cmd.Context(), "aborted user deletion")
				return err
			}
			if err = store.DeleteUser(cmd.Context(), user.ID); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "user deleted")
			return nil
		},
	}
}

