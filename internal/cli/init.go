package cli

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/redress/internal/db"
	"github.com/example/redress/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the redress database",
		Long:  `Initialize the redress database and outbox directory with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			fmt.Printf("Initializing redress database at %s\n", cfg.DBPath)

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close()

			fmt.Println("✓ Database initialized successfully")

			if err := os.MkdirAll(cfg.OutboxDir, 0755); err != nil {
				return fmt.Errorf("failed to create outbox directory: %w", err)
			}
			fmt.Printf("✓ Outbox directory ready at %s\n", cfg.OutboxDir)

			if seed, _ := cmd.Flags().GetBool("seed"); seed {
				if err := seedDemoData(database); err != nil {
					return fmt.Errorf("failed to seed demo data: %w", err)
				}
				fmt.Println("✓ Demo subject and items seeded (subject demo-subject)")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  redress catalog list")
			fmt.Println("  redress recommend --item <item-id> --subject <subject-id>")

			return nil
		},
	}

	cmd.Flags().Bool("seed", false, "Seed a demo subject with sample items")
	return cmd
}

// seedDemoData inserts a demo subject and items covering each item type,
// so recommend has something to chew on out of the box. Re-running init
// --seed is a no-op.
func seedDemoData(database *sql.DB) error {
	now := time.Now().UTC()

	_, err := database.Exec(
		`INSERT OR IGNORE INTO subjects (id, plan_tier) VALUES (?, ?)`,
		"demo-subject", "plus",
	)
	if err != nil {
		return fmt.Errorf("failed to insert subject: %w", err)
	}

	items := []struct {
		id             string
		itemType       string
		furnisher      string
		balanceCents   int64
		paymentStatus  string
		openedYearsAgo int
	}{
		{"demo-collection", "collection", "Axiom Recovery LLC", 312_500, "collection", 3},
		{"demo-chargeoff", "account", "First Meridian Bank", 1_845_000, "charge-off", 6},
		{"demo-inquiry", "inquiry", "Quickline Auto Finance", 0, "current", 1},
		{"demo-obsolete", "public-record", "County Clerk", 0, "current", 8},
	}

	for _, it := range items {
		opened := now.AddDate(-it.openedYearsAgo, 0, 0)
		_, err := database.Exec(
			`INSERT OR IGNORE INTO items
				(id, subject_id, item_type, furnisher, balance_cents, payment_status, opened_at, reported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.id, "demo-subject", it.itemType, it.furnisher,
			it.balanceCents, it.paymentStatus, opened, opened,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", it.id, err)
		}
	}

	// One prior verified dispute on the charge-off so method-of-verification
	// becomes eligible against it.
	_, err = database.Exec(
		`INSERT OR IGNORE INTO item_disputes (id, item_id, disputed_at, status) VALUES (?, ?, ?, ?)`,
		"demo-chargeoff-dispute", "demo-chargeoff", now.AddDate(0, -4, 0), "verified",
	)
	if err != nil {
		return fmt.Errorf("failed to insert dispute history: %w", err)
	}

	return nil
}
