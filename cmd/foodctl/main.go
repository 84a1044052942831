package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/optin"
	"github.com/Sakethsreeram7/food-tracker/internal/store"
)

var (
	dbPath string
	orgTZ  string
)

func main() {
	root := &cobra.Command{
		Use:          "foodctl",
		Short:        "Administrative tool for the meal opt-in database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./data/foodtracker.db", "path to the sqlite database")
	root.PersistentFlags().StringVar(&orgTZ, "tz", "Asia/Kolkata", "organizational timezone")

	root.AddCommand(seedCmd(), scheduleCmd(), qrCmd(), rosterCmd(), historyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openService opens the database and builds the opt-in service. The caller
// must Close the returned repo.
func openService(ctx context.Context) (store.Repo, *optin.Service, error) {
	loc, err := time.LoadLocation(orgTZ)
	if err != nil {
		return nil, nil, fmt.Errorf("timezone %q: %w", orgTZ, err)
	}
	repo, err := store.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, optin.New(repo, zap.NewNop(), loc), nil
}
