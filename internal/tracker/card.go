package tracker

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"optiontracker/internal/aggregate"
)

// Placeholder is shown for any value that is missing.
const Placeholder = "—"

const noData = "No data available"

// Status reports whether a short put is in the money: ITM when the live price
// is below the strike, OTM otherwise. Placeholder when either is unknown.
func Status(p Position) string {
	if p.LivePrice == nil || *p.LivePrice == 0 {
		return Placeholder
	}
	strike, err := decimal.NewFromString(strings.TrimSpace(p.Strike))
	if err != nil {
		return Placeholder
	}
	if decimal.NewFromFloat(*p.LivePrice).LessThan(strike) {
		return "ITM"
	}
	return "OTM"
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func dollars(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return "$" + s
}

// RenderCard writes a plain-text card for the position at index.
func RenderCard(w io.Writer, index int, p Position) error {
	live, change := Placeholder, Placeholder
	if p.LivePrice != nil {
		live = "$" + decimal.NewFromFloat(*p.LivePrice).StringFixed(2)
	}
	if p.PercentChange != nil {
		change = p.PercentChange.String() + "%"
		if p.PercentChange.IsPositive() {
			change = "+" + change
		}
	}
	headline := noData
	if p.Article != nil && p.Article.Title != "" {
		headline = p.Article.Title
		if p.Article.Source != "" {
			headline += " (" + p.Article.Source + ")"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s  Exp: %s  %s\n", index, orPlaceholder(p.Ticker), orPlaceholder(p.Exp), Status(p))
	fmt.Fprintf(&b, "    Strike %s  Breakeven %s  Premium %s\n", dollars(p.Strike), dollars(p.Breakeven), dollars(p.Premium))
	fmt.Fprintf(&b, "    Live %s  Change %s\n", live, change)
	fmt.Fprintf(&b, "    News: %s\n", headline)
	if p.Sentiment != nil {
		fmt.Fprintf(&b, "    Sentiment: %s\n", *p.Sentiment)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var marketLabels = map[string]string{
	"SPY": "S&P 500",
	"QQQ": "NASDAQ 100",
	"DIA": "DOW JONES",
}

// MarketLabel is the display name of a snapshot symbol.
func MarketLabel(symbol string) string {
	if l, ok := marketLabels[symbol]; ok {
		return l
	}
	return symbol
}

// FormatMarketPrice renders a snapshot value: BTC without decimals, anything
// else with two, thousands grouped. Nil or zero is Placeholder.
func FormatMarketPrice(symbol string, v *float64) string {
	if v == nil || *v == 0 {
		return Placeholder
	}
	places := int32(2)
	if symbol == "BTC" {
		places = 0
	}
	return "$" + groupThousands(decimal.NewFromFloat(*v).StringFixed(places))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// RenderMarkets writes one line per symbol in order.
func RenderMarkets(w io.Writer, symbols []string, snap aggregate.Snapshot) error {
	var b strings.Builder
	for _, sym := range symbols {
		fmt.Fprintf(&b, "%-11s %s\n", MarketLabel(sym), FormatMarketPrice(sym, snap[sym]))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMarketBar writes the crypto bar on a single line.
func RenderMarketBar(w io.Writer, bar []aggregate.BarEntry) error {
	cells := make([]string, 0, len(bar))
	for _, e := range bar {
		price := e.Price
		change := decimal.NewFromFloat(e.Change).StringFixed(2) + "%"
		if e.Change > 0 {
			change = "+" + change
		}
		cells = append(cells, fmt.Sprintf("%s %s (%s)", e.Name, FormatMarketPrice(e.Name, &price), change))
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, "  |  "))
	return err
}
