package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minseo/saju-reporter/internal/db"
)

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Read or write an engine setting",
}

var settingGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, database *db.DB) error {
			value, err := database.GetSetting(ctx, args[0], "")
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		})
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, database *db.DB) error {
			if err := database.PutSetting(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Setting %s updated\n", args[0])
			return nil
		})
	},
}

func init() {
	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)
	rootCmd.AddCommand(settingCmd)
}

func withDatabase(fn func(context.Context, *db.DB) error) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	return fn(ctx, database)
}
