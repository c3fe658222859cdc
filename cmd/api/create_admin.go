package main

import (
	"fmt"

	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"

	"github.com/spf13/cobra"
)

func createAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			user := &models.User{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				Role:         models.RoleAdmin,
				IsActive:     true,
			}
			if err := db.CreateUser(user); err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			logger.Component("main").WithField("user_id", user.ID).Infof("Admin %s created", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
