package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/fridgeshare/internal/app"
	"github.com/mmynk/fridgeshare/internal/config"
	"github.com/mmynk/fridgeshare/internal/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := app.OpenStore(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		m, ok := store.(app.Migrator)
		if !ok {
			return errors.New("store does not report a schema version")
		}
		version, dirty, err := m.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file with a fresh JWT secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")

		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generating secret: %w", err)
		}

		cfg := config.Default()
		cfg.Auth.JWTSecret = hex.EncodeToString(secret)
		if err := config.Init(path, cfg); err != nil {
			return err
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Database: %s %s\n", cfg.Database.Type, cfg.Database.Path)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue USER_ID",
	Short: "Issue a bearer token for a user (development use)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Store.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		token, err := a.JWT.Generate(user)
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		email, _ := cmd.Flags().GetString("email")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		user := &models.User{
			ID:        id,
			Email:     strings.TrimSpace(email),
			FirstName: first,
			LastName:  last,
		}
		if err := a.Store.CreateUser(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", user.ID, user.Email)
		return nil
	},
}

var fridgeCmd = &cobra.Command{
	Use:   "fridge",
	Short: "Manage fridges",
}

var fridgeCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a fridge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		fridge := &models.Fridge{Name: args[0]}
		if err := a.Store.CreateFridge(cmd.Context(), fridge); err != nil {
			return err
		}
		fmt.Printf("Created fridge %s (%s)\n", fridge.ID, fridge.Name)
		return nil
	},
}

var fridgeRepairCmd = &cobra.Command{
	Use:   "repair FRIDGE_ID",
	Short: "Add missing memberships for users whose active fridge is FRIDGE_ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := a.Store.ReconcileMemberships(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(added) == 0 {
			fmt.Println("Memberships are consistent.")
			return nil
		}
		for _, id := range added {
			fmt.Printf("Added membership for %s\n", id)
		}
		return nil
	},
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage fridge memberships",
}

var memberAddCmd = &cobra.Command{
	Use:   "add FRIDGE_ID USER_ID",
	Short: "Add a user to a fridge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Store.GetFridge(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := a.Store.AddMember(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Added %s to fridge %s\n", args[1], args[0])
		return nil
	},
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove FRIDGE_ID USER_ID",
	Short: "Remove a user from a fridge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.RemoveMember(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed %s from fridge %s\n", args[1], args[0])
		return nil
	},
}
