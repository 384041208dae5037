package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/fridgeshare/internal/calculator"
	"github.com/mmynk/fridgeshare/internal/ledger"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/service"
	"github.com/mmynk/fridgeshare/pkg/api"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Manage fridge purchases",
}

var purchaseAddCmd = &cobra.Command{
	Use:   "add FRIDGE_ID",
	Short: "Log an item bought for a fridge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")
		title, _ := cmd.Flags().GetString("title")
		price, _ := cmd.Flags().GetFloat64("price")
		sharedBy, _ := cmd.Flags().GetStringSlice("shared-by")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		fridgeID := args[0]
		members, err := a.Store.ListMembers(ctx, fridgeID)
		if err != nil {
			return err
		}
		if !containsUser(members, by) {
			return fmt.Errorf("%s is not a member of fridge %s", by, fridgeID)
		}
		req := &api.AddPurchaseRequest{FridgeID: fridgeID, Title: title, Price: price, SharedBy: sharedBy}
		if err := service.ValidatePurchase(req, members); err != nil {
			return err
		}

		p := &models.Purchase{
			FridgeID: fridgeID,
			Title:    strings.TrimSpace(title),
			Price:    calculator.Round2(price),
			AddedBy:  by,
			SharedBy: sharedBy,
		}
		if err := a.Store.CreatePurchase(ctx, p); err != nil {
			return err
		}
		fmt.Printf("Added %s (%.2f) as %s\n", p.Title, p.Price, p.ID)
		return nil
	},
}

var purchaseListCmd = &cobra.Command{
	Use:   "ls FRIDGE_ID",
	Short: "List a fridge's purchases, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		purchases, err := a.Store.ListPurchases(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(purchases) == 0 {
			fmt.Println("No purchases.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRICE\tBY\tSHARED BY\tADDED")
		for _, p := range purchases {
			shared := "everyone"
			if len(p.SharedBy) > 0 {
				shared = strings.Join(p.SharedBy, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
				p.ID, p.Title, p.Price, p.AddedBy, shared, p.CreatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

var purchaseRemoveCmd = &cobra.Command{
	Use:   "rm PURCHASE_ID",
	Short: "Delete a purchase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.DeletePurchase(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted purchase %s\n", args[0])
		return nil
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances FRIDGE_ID",
	Short: "Show balances and suggested payments for a fridge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Engine.GetBalances(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear FRIDGE_ID USER_ID",
	Short: "Record settlements that bring a user's balance to zero",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("as")
		if actor == "" {
			actor = args[1]
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Engine.ClearUserBalance(cmd.Context(), args[0], args[1], actor)
		if err != nil {
			return err
		}
		if res.AlreadySettled {
			fmt.Printf("%s has nothing to settle.\n", args[1])
			return nil
		}
		for _, s := range res.Recorded {
			fmt.Printf("Recorded %s -> %s %.2f\n", s.FromUserID, s.ToUserID, s.Amount)
		}
		fmt.Println()
		printReport(res.Report)
		return nil
	},
}

func printReport(r *ledger.Report) {
	if len(r.Balances) == 0 {
		fmt.Println("No members.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tBALANCE\tLAST CLEARED")
	for _, b := range r.Balances {
		cleared := "never"
		if !b.LastClearedAt.IsZero() {
			cleared = b.LastClearedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%+.2f\t%s\n", b.User.DisplayName(), b.Balance, cleared)
	}
	w.Flush()

	if len(r.Transactions) == 0 {
		fmt.Println("\nEveryone is settled up.")
		return
	}
	fmt.Println("\nSuggested payments:")
	for _, t := range r.Transactions {
		fmt.Printf("  %s -> %s  %.2f\n", t.From, t.To, t.Amount)
	}
}

func containsUser(users []*models.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
