package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Column names the aggregations read.
const (
	ColumnPrice     = "price"
	ColumnQuantity  = "quantity"
	ColumnCategory0 = "item_category0"
	ColumnCategory1 = "item_category1"
	ColumnCategory2 = "item_category2"
)

// PriceEdges are the lower bounds of the price buckets. Each bucket is
// [edge, next edge); the last one is open-ended.
var PriceEdges = []float64{0, 5, 10, 15, 20, 25, 30, 50, 100}

// PriceLabels name the buckets in PriceEdges order.
var PriceLabels = []string{"0-5", "5-10", "10-15", "15-20", "20-25", "25-30", "30-50", "50-100", "100+"}

// Stock band labels, in chart order.
const (
	BandHigh   = "High Stock (100+)"
	BandGood   = "Good Stock (51-100)"
	BandMedium = "Medium Stock (11-50)"
	BandLow    = "Low Stock (1-10)"
	BandOut    = "Out of Stock"
)

// StockBandOrder is the fixed display order of the stock bands.
var StockBandOrder = []string{BandHigh, BandGood, BandMedium, BandLow, BandOut}

// Count is a label with an occurrence count.
type Count struct {
	Label string
	Count int
}

// Amount is a label with a monetary value.
type Amount struct {
	Label string
	Value float64
}

// Bucket is one price range and the number of books in it.
type Bucket struct {
	Label string
	Min   float64
	Max   float64 // +Inf for the last bucket
	Count int
}

// Band is one stock band with its share of all books in the table.
type Band struct {
	Label   string
	Count   int
	Percent float64
}

// PriceBucket returns the index into PriceEdges for price, or -1 when the
// price is below the first edge.
func PriceBucket(price float64) int {
	if price < PriceEdges[0] || math.IsNaN(price) {
		return -1
	}
	i := sort.Search(len(PriceEdges), func(i int) bool { return PriceEdges[i] > price })
	return i - 1
}

// PriceBuckets counts valid prices per bucket, in bucket order.
func PriceBuckets(t *Table) ([]Bucket, error) {
	if err := t.require(ColumnPrice); err != nil {
		return nil, err
	}

	buckets := make([]Bucket, len(PriceEdges))
	for i, edge := range PriceEdges {
		upper := math.Inf(1)
		if i+1 < len(PriceEdges) {
			upper = PriceEdges[i+1]
		}
		buckets[i] = Bucket{Label: PriceLabels[i], Min: edge, Max: upper}
	}
	for _, row := range t.Rows {
		if !row.Price.Valid {
			continue
		}
		if i := PriceBucket(row.Price.Value); i >= 0 {
			buckets[i].Count++
		}
	}
	return buckets, nil
}

// StockBand classifies a quantity. Negative quantities have no band.
func StockBand(quantity int64) (string, bool) {
	switch {
	case quantity < 0:
		return "", false
	case quantity == 0:
		return BandOut, true
	case quantity <= 10:
		return BandLow, true
	case quantity <= 50:
		return BandMedium, true
	case quantity <= 100:
		return BandGood, true
	default:
		return BandHigh, true
	}
}

// StockBands counts books per stock band in StockBandOrder. Books with a
// missing quantity are not banded but still count in the percentage base,
// which is every book in t.
func StockBands(t *Table) ([]Band, error) {
	if err := t.require(ColumnQuantity); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(StockBandOrder))
	for _, row := range t.Rows {
		if !row.Quantity.Valid {
			continue
		}
		if band, ok := StockBand(row.Quantity.Value); ok {
			counts[band]++
		}
	}
	total := t.Len()

	bands := make([]Band, 0, len(StockBandOrder))
	for _, label := range StockBandOrder {
		b := Band{Label: label, Count: counts[label]}
		if total > 0 {
			b.Percent = float64(b.Count) / float64(total) * 100
		}
		bands = append(bands, b)
	}
	return bands, nil
}

// CountBy counts non-empty labels of column, most frequent first. Ties keep
// the order in which labels first appear.
func CountBy(t *Table, column string) ([]Count, error) {
	if err := t.require(column); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var counts []Count
	for _, row := range t.Rows {
		label := row.Label(column)
		if label == "" {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(counts)
			index[label] = i
			counts = append(counts, Count{Label: label})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

// TopCategories returns the n most frequent narrowest categories.
func TopCategories(t *Table, n int) ([]Count, error) {
	counts, err := CountBy(t, ColumnCategory2)
	if err != nil {
		return nil, err
	}
	return head(counts, n), nil
}

// MainCategories counts the broad category labels held in column.
func MainCategories(t *Table, column string) ([]Count, error) {
	return CountBy(t, column)
}

// AveragePriceByCategory returns the n narrowest categories with the highest
// mean price. Missing prices are excluded from each mean; categories with no
// valid price are left out.
func AveragePriceByCategory(t *Table, n int) ([]Amount, error) {
	if err := t.require(ColumnCategory2, ColumnPrice); err != nil {
		return nil, err
	}
	groups := groupValues(t, func(r Row) Float { return r.Price })

	amounts := make([]Amount, 0, len(groups))
	for _, g := range groups {
		amounts = append(amounts, Amount{Label: g.label, Value: stat.Mean(g.values, nil)})
	}
	sortAmounts(amounts)
	return head(amounts, n), nil
}

// InventoryValueByCategory returns the n narrowest categories with the
// highest summed price×quantity. Rows with either operand missing are
// excluded from each sum.
func InventoryValueByCategory(t *Table, n int) ([]Amount, error) {
	if err := t.require(ColumnCategory2, ColumnPrice, ColumnQuantity); err != nil {
		return nil, err
	}
	groups := groupValues(t, Row.Value)

	amounts := make([]Amount, 0, len(groups))
	for _, g := range groups {
		amounts = append(amounts, Amount{Label: g.label, Value: floats.Sum(g.values)})
	}
	sortAmounts(amounts)
	return head(amounts, n), nil
}

type group struct {
	label  string
	values []float64
}

// groupValues collects valid values per narrowest category in first-seen
// order. Categories without a single valid value are dropped.
func groupValues(t *Table, value func(Row) Float) []group {
	index := make(map[string]int)
	var groups []group
	for _, row := range t.Rows {
		label := row.Label(ColumnCategory2)
		v := value(row)
		if label == "" || !v.Valid {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, group{label: label})
		}
		groups[i].values = append(groups[i].values, v.Value)
	}
	return groups
}

func sortAmounts(amounts []Amount) {
	sort.SliceStable(amounts, func(i, j int) bool { return amounts[i].Value > amounts[j].Value })
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
