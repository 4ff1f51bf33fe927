// Package parser turns catalog responses into books and coerces their
// numeric fields.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-libraff-books/models"
	"github.com/tidwall/gjson"
)

// Response paths of the storefront's analytics payload.
const (
	containerKey = "cp_gtm"
	productsKey  = "view_products"
)

// ExtractBooks walks cp_gtm.view_products and returns one book per entry in
// document order. Any other shape, including a body that is not JSON, yields
// no books.
func ExtractBooks(body []byte) []*models.Book {
	products, ok := lookupProducts(body)
	if !ok {
		return nil
	}

	var books []*models.Book
	products.ForEach(func(key, value gjson.Result) bool {
		id := NormalizeText(key.String())
		if id == "" {
			return true
		}
		books = append(books, bookFromEntry(id, value))
		return true
	})
	return books
}

// IsJSON reports whether body decodes as JSON at all.
func IsJSON(body []byte) bool {
	return gjson.ValidBytes(body)
}

func lookupProducts(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	container := gjson.GetBytes(body, containerKey)
	if !container.IsObject() {
		return gjson.Result{}, false
	}
	products := container.Get(productsKey)
	if !products.IsObject() {
		return gjson.Result{}, false
	}
	return products, true
}

func bookFromEntry(id string, entry gjson.Result) *models.Book {
	field := func(name string) string {
		return NormalizeText(entry.Get(name).String())
	}
	return &models.Book{
		ProductID:     id,
		ItemName:      field("item_name"),
		ItemID:        field("item_id"),
		Currency:      field("currency"),
		Price:         field("price"),
		Quantity:      field("quantity"),
		Stock:         field("stock"),
		ItemCategory0: field("item_category0"),
		ItemCategory1: field("item_category1"),
		ItemCategory2: field("item_category2"),
		ItemListName:  field("item_list_name"),
	}
}

// ValidateBook ensures the book can be keyed in the catalog.
func ValidateBook(b *models.Book) error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if strings.TrimSpace(b.ProductID) == "" {
		return fmt.Errorf("book missing product id (%q)", b.ItemName)
	}
	return nil
}

// NormalizeText trims surrounding whitespace.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// ParsePrice coerces a price to a number. Empty or non-numeric text, NaN and
// infinities are reported as missing.
func ParsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseQuantity coerces a stock quantity to an integer. Integral decimals
// such as "5.0" are accepted; anything else is missing.
func ParseQuantity(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v, true
	}
	f, ok := ParsePrice(text)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(f), true
}
