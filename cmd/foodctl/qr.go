package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
	"github.com/Sakethsreeram7/food-tracker/internal/qr"
	"github.com/Sakethsreeram7/food-tracker/internal/token"
)

func qrCmd() *cobra.Command {
	var (
		dateStr string
		baseURL string
		qrDir   string
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Issue or regenerate daily verification QR codes",
	}
	cmd.PersistentFlags().StringVar(&dateStr, "date", "", "target date YYYY-MM-DD (required)")
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8080", "base URL embedded in the QR payload")
	cmd.PersistentFlags().StringVar(&qrDir, "qr-dir", "./data/qr", "directory for rendered PNG files")
	_ = cmd.MarkPersistentFlagRequired("date")

	run := func(regen bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			date, err := domain.ParseDate(dateStr)
			if err != nil {
				return err
			}

			repo, svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			renderer, err := qr.NewRenderer(qrDir)
			if err != nil {
				return err
			}
			issuer := token.New(repo, renderer, svc, zap.NewNop(), baseURL)

			var (
				tok  *domain.VerificationToken
				path string
			)
			if regen {
				tok, path, err = issuer.Regenerate(cmd.Context(), date)
			} else {
				tok, path, err = issuer.Issue(cmd.Context(), date)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", tok.Date, issuer.Payload(tok), path)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "issue",
			Short: "Issue the token for a date (idempotent)",
			Args:  cobra.NoArgs,
			RunE:  run(false),
		},
		&cobra.Command{
			Use:   "regen",
			Short: "Replace the token for a date, invalidating the old one",
			Args:  cobra.NoArgs,
			RunE:  run(true),
		},
	)
	return cmd
}
