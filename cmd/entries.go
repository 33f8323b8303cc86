package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/cli"
	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagEntriesLimit  int
	flagEntriesUntil  string
	flagEntriesPerson string
	flagEntriesOwner  string
	flagEntriesPlace  string
	flagEntriesCard   string
	flagEntriesBank   string
	flagEntriesFamily string
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List entries, newest first",
	RunE:  runEntries,
}

func init() {
	f := entriesCmd.Flags()
	f.IntVarP(&flagEntriesLimit, "limit", "l", 20, "Number of entries to show (0 for all)")
	f.StringVar(&flagEntriesUntil, "until", "", "Last day included (YYYY-MM-DD)")
	f.StringVar(&flagEntriesPerson, "person", "", "Counterparty id")
	f.StringVar(&flagEntriesOwner, "owner", "", "Owner id")
	f.StringVar(&flagEntriesPlace, "place", "", "Place id")
	f.StringVar(&flagEntriesCard, "card", "", "Card id")
	f.StringVar(&flagEntriesBank, "bank", "", "Bank id")
	f.StringVar(&flagEntriesFamily, "family", "", "Currency family: fiat, crypto, gold or cash")
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(_ *cobra.Command, _ []string) error {
	req, err := reportRequest()
	if err != nil {
		return err
	}
	filter := pipeline.Filter{
		CategoryID:    req.CategoryID,
		Uncategorized: req.Uncategorized,
		PersonID:      model.ID(flagEntriesPerson),
		OwnerID:       model.ID(flagEntriesOwner),
		PlaceID:       model.ID(flagEntriesPlace),
		CardID:        model.ID(flagEntriesCard),
		BankID:        model.ID(flagEntriesBank),
		Family:        model.CurrencyFamily(strings.ToLower(strings.TrimSpace(flagEntriesFamily))),
		From:          req.Window.From(time.Now()),
	}
	switch filter.Family {
	case "", model.FamilyFiat, model.FamilyCrypto, model.FamilyGold, model.FamilyCash:
	default:
		return common.NewValidationError("family", flagEntriesFamily, common.ErrUnknownCurrency)
	}
	if flagEntriesUntil != "" {
		until, err := pipeline.ParseDate(flagEntriesUntil)
		if err != nil {
			return err
		}
		filter.To = &until
	}

	snap, err := loadData()
	if err != nil {
		return err
	}
	if emptyLedger(snap) {
		return nil
	}

	matched := pipeline.FilterEntries(snap.Entries, filter, snap.Lookups)
	if len(matched) == 0 {
		fmt.Println("\n  No entries match the selected filters.")
		return nil
	}

	limit := flagEntriesLimit
	if limit <= 0 {
		limit = -1
	}
	shown := pipeline.RecentEntries(matched, limit)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ENTRIES  showing %d of %d", len(shown), len(matched))))
	fmt.Println()
	fmt.Print(renderEntries("", shown, snap, locale()))
	fmt.Println()
	return nil
}

// renderEntries renders entries as a table with resolved category names.
func renderEntries(title string, entries []model.Entry, snap *pipeline.Snapshot, loc config.Locale) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		amount := e.Currency.Symbol() + cli.FormatAmount(e.Amount, loc)
		switch pipeline.Classify(e.Kind) {
		case pipeline.IncomeLike:
			amount = cli.RenderSigned(amount, true)
		case pipeline.ExpenseLike:
			amount = cli.RenderSigned(amount, false)
		}

		cat := loc.Uncategorized()
		if id := snap.Lookups.CategoryOf(e); id != "" {
			cat = categoryLabel(snap, id, loc)
		}

		when := cli.FormatDate(e.Date)
		if e.Time != "" {
			when += " " + e.Time
		}

		rows = append(rows, []string{
			when,
			string(e.Kind),
			cat,
			amount,
			cli.Truncate(strings.TrimSpace(e.Description), 28),
			string(e.ID),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Date", "Kind", "Category", "Amount", "Description", "ID"},
		Rows:    rows,
	})
}
