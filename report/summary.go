package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aluiziolira/go-libraff-books/config"
)

// Summary holds catalog-wide statistics.
type Summary struct {
	Books       int
	PricedBooks int
	PriceMean   float64
	PriceMin    float64
	PriceMax    float64

	StockedBooks   int // books with a valid quantity
	TotalUnits     int64
	UnitsMean      float64
	OutOfStock     int
	HighStock      int // quantity >= 100
	InventoryValue float64
}

// OutOfStockPercent is the out-of-stock share of all books.
func (s Summary) OutOfStockPercent() float64 {
	if s.Books == 0 {
		return 0
	}
	return float64(s.OutOfStock) / float64(s.Books) * 100
}

// Summarize computes statistics over the valid values of t. Price fields are
// zero when no book has a valid price.
func Summarize(t *Table) Summary {
	s := Summary{Books: t.Len()}

	var prices, units, values []float64
	for _, row := range t.Rows {
		if row.Price.Valid {
			prices = append(prices, row.Price.Value)
		}
		if row.Quantity.Valid {
			q := row.Quantity.Value
			units = append(units, float64(q))
			s.TotalUnits += q
			if q == 0 {
				s.OutOfStock++
			}
			if q >= 100 {
				s.HighStock++
			}
		}
		if v := row.Value(); v.Valid {
			values = append(values, v.Value)
		}
	}

	s.PricedBooks = len(prices)
	if len(prices) > 0 {
		s.PriceMean = stat.Mean(prices, nil)
		s.PriceMin = floats.Min(prices)
		s.PriceMax = floats.Max(prices)
	}
	s.StockedBooks = len(units)
	if len(units) > 0 {
		s.UnitsMean = stat.Mean(units, nil)
	}
	s.InventoryValue = floats.Sum(values)
	return s
}

// Aggregation names, used to key failures.
const (
	AggPriceDistribution = "price_distribution"
	AggTopCategories     = "top_categories"
	AggStockAvailability = "stock_availability"
	AggMainCategories    = "main_categories"
	AggAvgPrice          = "avg_price_by_category"
	AggInventoryValue    = "inventory_value_by_category"
)

// Aggregates is everything the charts and the digest are drawn from.
// An aggregation that failed leaves its field nil and records the error.
type Aggregates struct {
	Currency string
	Summary  Summary

	PriceBuckets   []Bucket
	TopCategories  []Count
	StockBands     []Band
	MainCategories []Count
	AveragePrice   []Amount
	InventoryValue []Amount

	Failures map[string]error
}

// Err returns the failure recorded for the named aggregation.
func (a *Aggregates) Err(name string) error {
	return a.Failures[name]
}

// Error joins every failure, or returns nil.
func (a *Aggregates) Error() error {
	var errs []error
	for _, name := range []string{
		AggPriceDistribution, AggTopCategories, AggStockAvailability,
		AggMainCategories, AggAvgPrice, AggInventoryValue,
	} {
		if err := a.Failures[name]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Aggregate runs every aggregation independently; one failing does not stop
// the others.
func Aggregate(t *Table, cfg *config.ReportConfig) *Aggregates {
	a := &Aggregates{
		Currency: cfg.Currency,
		Summary:  Summarize(t),
		Failures: make(map[string]error),
	}
	record := func(name string, err error) {
		if err != nil {
			a.Failures[name] = err
		}
	}

	var err error
	a.PriceBuckets, err = PriceBuckets(t)
	record(AggPriceDistribution, err)

	a.TopCategories, err = TopCategories(t, cfg.TopCategories)
	record(AggTopCategories, err)

	a.StockBands, err = StockBands(t)
	record(AggStockAvailability, err)

	a.MainCategories, err = MainCategories(t, cfg.MainCategoryField)
	record(AggMainCategories, err)

	a.AveragePrice, err = AveragePriceByCategory(t, cfg.TopPriced)
	record(AggAvgPrice, err)

	a.InventoryValue, err = InventoryValueByCategory(t, cfg.TopValue)
	record(AggInventoryValue, err)

	return a
}
