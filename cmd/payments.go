package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	paymentPostgres "github.com/frahmantamala/travel-booking/internal/payment/postgres"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Payment maintenance commands",
}

var (
	staleOlderThan time.Duration
	staleJSON      bool
)

var stalePaymentsCmd = &cobra.Command{
	Use:   "stale",
	Short: "List pending payments older than a threshold",
	Long: `List payments that are still Pending after the given age. These are
attempts whose gateway outcome was never recorded and need manual
reconciliation through PATCH /api/v1/payments/{id}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		rows, err := paymentPostgres.NewStaleReport(db).Pending(cmd.Context(), staleOlderThan, time.Now())
		if err != nil {
			return err
		}

		if staleJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTRANSACTION\tBOOKING\tAMOUNT\tCREATED")
		for _, p := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s\t%s\n",
				p.ID, p.TransactionID, p.BookingReference, p.Amount.StringFixed(2), p.Currency,
				p.CreatedAt.Format(time.RFC3339))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Printf("%d stale payment(s) older than %s\n", len(rows), staleOlderThan)
		return nil
	},
}

func init() {
	stalePaymentsCmd.Flags().DurationVar(&staleOlderThan, "older-than", 30*time.Minute, "minimum age of a pending payment")
	stalePaymentsCmd.Flags().BoolVar(&staleJSON, "json", false, "print rows as JSON")

	paymentsCmd.AddCommand(stalePaymentsCmd)
}
