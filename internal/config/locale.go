package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale selects month names, labels and number formatting.
type Locale string

// Supported locales.
const (
	LocaleEnglish Locale = "en"
	LocaleTurkish Locale = "tr"
)

var (
	supportedTags = []language.Tag{language.English, language.Turkish}
	localeMatcher = language.NewMatcher(supportedTags)
)

var monthNames = map[Locale][12]string{
	LocaleEnglish: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	LocaleTurkish: {"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran", "Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık"},
}

var uncategorizedLabel = map[Locale]string{
	LocaleEnglish: "Uncategorized",
	LocaleTurkish: "Kategorisiz",
}

// ParseLocale resolves a BCP 47 tag such as "tr-TR" or "en_US" to the
// closest supported locale. Unparseable tags are an error.
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return LocaleEnglish, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return LocaleEnglish, fmt.Errorf("parsing locale %q: %w", s, err)
	}
	_, idx, _ := localeMatcher.Match(tag)
	if idx == 1 {
		return LocaleTurkish, nil
	}
	return LocaleEnglish, nil
}

func (l Locale) tag() language.Tag {
	if l == LocaleTurkish {
		return language.Turkish
	}
	return language.English
}

// MonthName returns the display name of m.
func (l Locale) MonthName(m time.Month) string {
	names, ok := monthNames[l]
	if !ok {
		names = monthNames[LocaleEnglish]
	}
	return names[m-1]
}

// MonthLabel renders a YYYY-MM key as "<month name> <year>". Keys that do
// not parse are returned unchanged.
func (l Locale) MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", l.MonthName(t.Month()), t.Year())
}

// Uncategorized is the label of the bucket for entries without a category.
func (l Locale) Uncategorized() string {
	if s, ok := uncategorizedLabel[l]; ok {
		return s
	}
	return uncategorizedLabel[LocaleEnglish]
}

// Printer returns a message printer for localized number output.
func (l Locale) Printer() *message.Printer {
	return message.NewPrinter(l.tag())
}

// FormatAmount renders d with two decimals and locale digit grouping.
func (l Locale) FormatAmount(d decimal.Decimal) string {
	return l.Printer().Sprintf("%.2f", d.Round(2).InexactFloat64())
}
