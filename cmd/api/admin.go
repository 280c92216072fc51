package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/postgres"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/security"
)

// createAdminCmd seeds an Admin account. Staff accounts can only be
// registered by an admin, so the first one is created here.
func createAdminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an Admin account",
		Long:  "Create an Admin account. The password is read from MEDILINK_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv("MEDILINK_ADMIN_PASSWORD")
			if password == "" {
				return errors.New("MEDILINK_ADMIN_PASSWORD is not set")
			}

			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := security.NewBcryptHasher(0).Hash(password)
			if err != nil {
				return err
			}
			user := &model.User{
				Name:         name,
				Email:        model.NormalizeEmail(email),
				PasswordHash: hash,
				Role:         model.RoleAdmin,
				IsActive:     true,
			}
			users := postgres.NewUserRepository(postgres.NewBaseRepository(db))
			if err := users.Create(cmd.Context(), user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return errors.New("a user with this email already exists")
				}
				return err
			}

			log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
