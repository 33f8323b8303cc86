package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/source"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagAddAmount   string
	flagAddCurrency string
	flagAddKind     string
	flagAddDate     string
	flagAddTime     string
	flagAddDesc     string
	flagAddCard     string
	flagAddBank     string
	flagAddPerson   string
	flagAddPlace    string
	flagAddOwner    string
	flagAddFromBank string
	flagAddToBank   string
	flagAddTags     []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an entry in the journal",
	Example: `  noralyzer add --amount 120.50 --kind expense --category food --desc "groceries"
  noralyzer add --amount 5000 --kind income --currency USD --date 2024-01-31`,
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVarP(&flagAddAmount, "amount", "a", "", "Amount, a non-negative decimal (required)")
	f.StringVar(&flagAddCurrency, "currency", "TRY", "Currency code")
	f.StringVarP(&flagAddKind, "kind", "k", string(model.KindExpense), "Entry kind")
	f.StringVar(&flagAddDate, "date", "", "Date (YYYY-MM-DD), defaults to today")
	f.StringVar(&flagAddTime, "time", "", "Time of day (HH:MM)")
	f.StringVar(&flagAddDesc, "desc", "", "Description")
	f.StringVar(&flagAddCard, "card", "", "Card id")
	f.StringVar(&flagAddBank, "bank", "", "Bank id")
	f.StringVar(&flagAddPerson, "person", "", "Counterparty id")
	f.StringVar(&flagAddPlace, "place", "", "Place id")
	f.StringVar(&flagAddOwner, "owner", "", "Owner id")
	f.StringVar(&flagAddFromBank, "from-bank", "", "Source bank id for transfers")
	f.StringVar(&flagAddToBank, "to-bank", "", "Destination bank id for transfers")
	f.StringSliceVar(&flagAddTags, "tag", nil, "Tag id (repeatable)")
	_ = addCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, _ []string) error {
	amount, err := parseAmount("amount", flagAddAmount)
	if err != nil {
		return err
	}

	date := strings.TrimSpace(flagAddDate)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	raw := source.RawEntry{
		ID:          model.ID(uuid.New().String()),
		Amount:      &amount,
		Currency:    strings.ToUpper(strings.TrimSpace(flagAddCurrency)),
		Kind:        strings.ToLower(strings.TrimSpace(flagAddKind)),
		Date:        date,
		Time:        strings.TrimSpace(flagAddTime),
		Description: strings.TrimSpace(flagAddDesc),
		CategoryID:  pipeline.CategoryRef(flagCategory),
		CardID:      model.ID(flagAddCard),
		BankID:      model.ID(flagAddBank),
		PersonID:    model.ID(flagAddPerson),
		PlaceID:     model.ID(flagAddPlace),
		OwnerID:     model.ID(flagAddOwner),
		FromBankID:  model.ID(flagAddFromBank),
		ToBankID:    model.ID(flagAddToBank),
	}
	for _, t := range flagAddTags {
		raw.TagIDs = append(raw.TagIDs, model.ID(t))
	}

	rec, err := source.AppendRecord(journalPath(), source.TypeEntry, raw)
	if err != nil {
		return err
	}

	e, _ := rec.Value.(model.Entry)
	fmt.Printf("  Added %s %s%s on %s (%s)\n",
		e.Kind, e.Currency.Symbol(), cli.FormatAmount(e.Amount, locale()), cli.FormatDate(e.Date), e.ID)
	return nil
}
