package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and edit opt-in window rules",
	}
	cmd.AddCommand(scheduleListCmd(), scheduleSetCmd())
	return cmd
}

func scheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all schedule rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			rules, err := svc.Schedules(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range rules {
				kind := "weekday"
				if r.IsWeekendRule {
					kind = "weekend"
				}
				fmt.Printf("%d\t%s\t%s -> %s\t%s\n",
					r.ID, dayNames[r.DayOfWeek],
					domain.FormatMinutes(r.OpenM), domain.FormatMinutes(r.CloseM), kind)
			}
			return nil
		},
	}
}

func scheduleSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <rule-id> <open HH:MM> <close HH:MM>",
		Short: "Change the window of a schedule rule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("rule id %q: %w", args[0], err)
			}

			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			rule, err := svc.UpdateSchedule(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Printf("rule %d: %s -> %s\n",
				rule.ID, domain.FormatMinutes(rule.OpenM), domain.FormatMinutes(rule.CloseM))
			return nil
		},
	}
}
