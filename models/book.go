// Package models defines data structures shared by the collector and reporter.
package models

import "time"

// Book is one catalog entry as delivered by the storefront. Numeric fields
// keep their source text; coercion happens when the catalog is analysed.
type Book struct {
	ProductID     string `csv:"product_id" json:"product_id"`
	ItemName      string `csv:"item_name" json:"item_name"`
	ItemID        string `csv:"item_id" json:"item_id"`
	Currency      string `csv:"currency" json:"currency"`
	Price         string `csv:"price" json:"price"`
	Quantity      string `csv:"quantity" json:"quantity"`
	Stock         string `csv:"stock" json:"stock"`
	ItemCategory0 string `csv:"item_category0" json:"item_category0"`
	ItemCategory1 string `csv:"item_category1" json:"item_category1"`
	ItemCategory2 string `csv:"item_category2" json:"item_category2"`
	ItemListName  string `csv:"item_list_name" json:"item_list_name"`
}

// Columns is the persisted header, in order.
var Columns = []string{
	"product_id",
	"item_name",
	"item_id",
	"currency",
	"price",
	"quantity",
	"stock",
	"item_category0",
	"item_category1",
	"item_category2",
	"item_list_name",
}

// Record returns the book's fields in Columns order.
func (b *Book) Record() []string {
	return []string{
		b.ProductID,
		b.ItemName,
		b.ItemID,
		b.Currency,
		b.Price,
		b.Quantity,
		b.Stock,
		b.ItemCategory0,
		b.ItemCategory1,
		b.ItemCategory2,
		b.ItemListName,
	}
}

// Field returns the value of a persisted column by name.
func (b *Book) Field(column string) (string, bool) {
	switch column {
	case "product_id":
		return b.ProductID, true
	case "item_name":
		return b.ItemName, true
	case "item_id":
		return b.ItemID, true
	case "currency":
		return b.Currency, true
	case "price":
		return b.Price, true
	case "quantity":
		return b.Quantity, true
	case "stock":
		return b.Stock, true
	case "item_category0":
		return b.ItemCategory0, true
	case "item_category1":
		return b.ItemCategory1, true
	case "item_category2":
		return b.ItemCategory2, true
	case "item_list_name":
		return b.ItemListName, true
	default:
		return "", false
	}
}

// CatalogPage is the outcome of fetching one page. A page with Err set, or
// whose Body does not decode, carries no books.
type CatalogPage struct {
	Number int
	Body   []byte
	Err    error
}

// CollectionResult holds the overall result of a collection run.
type CollectionResult struct {
	Books        []*Book
	StartTime    time.Time
	EndTime      time.Time
	RawCount     int
	Duplicates   int
	Invalid      int
	PageCount    int
	EmptyPages   int
	FailedPages  []int
	ErrorsByType map[string]int
}

// SetField assigns a persisted column by name. Unknown columns are ignored
// and reported as false.
func (b *Book) SetField(column, value string) bool {
	switch column {
	case "product_id":
		b.ProductID = value
	case "item_name":
		b.ItemName = value
	case "item_id":
		b.ItemID = value
	case "currency":
		b.Currency = value
	case "price":
		b.Price = value
	case "quantity":
		b.Quantity = value
	case "stock":
		b.Stock = value
	case "item_category0":
		b.ItemCategory0 = value
	case "item_category1":
		b.ItemCategory1 = value
	case "item_category2":
		b.ItemCategory2 = value
	case "item_list_name":
		b.ItemListName = value
	default:
		return false
	}
	return true
}
