package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

func rosterCmd() *cobra.Command {
	var (
		dateStr  string
		mealName string
	)

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List users opted in for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := domain.ParseDate(dateStr)
			if err != nil {
				return err
			}

			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			var mealTypeID int64
			if mealName != "" {
				mt, err := svc.MealTypeByName(cmd.Context(), mealName)
				if err != nil {
					return fmt.Errorf("meal %q: %w", mealName, err)
				}
				mealTypeID = mt.ID
			}

			recs, err := svc.Roster(cmd.Context(), date, mealTypeID)
			if err != nil {
				return err
			}
			for _, r := range recs {
				fmt.Printf("%d\t%d\t%s\n", r.UserID, r.MealTypeID, r.Date)
			}
			fmt.Printf("%d opted in\n", len(recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "target date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&mealName, "meal", "", "filter by meal type name")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print per-day opt-in counts for the trailing 60 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			counts, err := svc.History(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range counts {
				fmt.Printf("%s\t%s\t%d\n", c.Date, c.MealName, c.Count)
			}
			return nil
		},
	}
}
