package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InsightsFile is the digest's name inside the output directory.
const InsightsFile = "insights.txt"

const notAvailable = "n/a"

// Insights composes the text digest. Sections whose aggregation failed
// print n/a in place of the missing figures.
func Insights(a *Aggregates) string {
	p := message.NewPrinter(language.English)
	s := a.Summary
	cur := a.Currency

	var b strings.Builder
	b.WriteString("\nKEY INSIGHTS FROM DATA ANALYSIS:\n\n")

	b.WriteString("1. PRICING STRATEGY:\n")
	if s.PricedBooks > 0 {
		p.Fprintf(&b, "   - Average book price: %.2f %s\n", s.PriceMean, cur)
	} else {
		fmt.Fprintf(&b, "   - Average book price: %s\n", notAvailable)
	}
	if a.PriceBuckets != nil {
		p.Fprintf(&b, "   - Cheapest range (%s): %d books\n", a.PriceBuckets[0].Label, a.PriceBuckets[0].Count)
		p.Fprintf(&b, "   - Most books (%d) priced under %.0f %s\n", countBelow(a.PriceBuckets, 15), 15.0, cur)
	} else {
		fmt.Fprintf(&b, "   - Price ranges: %s\n", notAvailable)
	}
	if s.PricedBooks > 0 {
		p.Fprintf(&b, "   - Price range: %.2f - %.2f %s\n", s.PriceMin, s.PriceMax, cur)
	}

	b.WriteString("\n2. CATALOG COMPOSITION:\n")
	p.Fprintf(&b, "   - Total unique books: %d\n", s.Books)
	if len(a.TopCategories) > 0 {
		top := a.TopCategories[0]
		p.Fprintf(&b, "   - Top category: %s (%d books)\n", top.Label, top.Count)
	} else {
		fmt.Fprintf(&b, "   - Top category: %s\n", notAvailable)
	}
	if len(a.MainCategories) > 0 {
		parts := make([]string, 0, 3)
		for _, c := range head(a.MainCategories, 3) {
			parts = append(parts, p.Sprintf("%s: %d", c.Label, c.Count))
		}
		fmt.Fprintf(&b, "   - Main category split: %s\n", strings.Join(parts, ", "))
	} else {
		fmt.Fprintf(&b, "   - Main category split: %s\n", notAvailable)
	}

	b.WriteString("\n3. INVENTORY STATUS:\n")
	p.Fprintf(&b, "   - Total inventory units: %d\n", s.TotalUnits)
	p.Fprintf(&b, "   - Out of stock items: %d (%.1f%%)\n", s.OutOfStock, s.OutOfStockPercent())
	p.Fprintf(&b, "   - High stock items (100+): %d\n", s.HighStock)

	b.WriteString("\n4. BUSINESS VALUE:\n")
	p.Fprintf(&b, "   - Total catalog value: %.2f %s\n", s.InventoryValue, cur)
	if len(a.InventoryValue) > 0 {
		top := a.InventoryValue[0]
		p.Fprintf(&b, "   - Highest value category: %s (%.2f %s)\n", top.Label, top.Value, cur)
	} else {
		fmt.Fprintf(&b, "   - Highest value category: %s\n", notAvailable)
	}
	if s.StockedBooks > 0 {
		p.Fprintf(&b, "   - Average inventory per book: %.0f units\n", s.UnitsMean)
	} else {
		fmt.Fprintf(&b, "   - Average inventory per book: %s\n", notAvailable)
	}

	return b.String()
}

// countBelow sums the buckets that lie entirely under limit.
func countBelow(buckets []Bucket, limit float64) int {
	n := 0
	for _, bucket := range buckets {
		if bucket.Max <= limit {
			n += bucket.Count
		}
	}
	return n
}

// WriteInsights stores the digest in dir, creating dir when needed.
func WriteInsights(dir, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, InsightsFile)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write insights %s: %w", path, err)
	}
	return path, nil
}
