package parser

import (
	"testing"

	"github.com/aluiziolira/go-libraff-books/models"
)

func TestExtractBooks(t *testing.T) {
	body := []byte(`{
		"html": {"pagination_contents": "<div></div>"},
		"cp_gtm": {
			"view_products": {
				"9001": {
					"item_name": "  Martin Eden ",
					"item_id": "9789952000000",
					"currency": "AZN",
					"price": 12.50,
					"quantity": 7,
					"stock": true,
					"item_category0": "Kitab",
					"item_category1": "Bədii ədəbiyyat",
					"item_category2": "Roman",
					"item_list_name": "Kitab"
				},
				"42": {"item_name": "Partial", "price": "abc"},
				"": {"item_name": "No id"},
				"7": "not an object"
			}
		}
	}`)

	books := ExtractBooks(body)
	if len(books) != 3 {
		t.Fatalf("books = %d, want 3", len(books))
	}

	wantOrder := []string{"9001", "42", "7"}
	for i, id := range wantOrder {
		if books[i].ProductID != id {
			t.Fatalf("books[%d].ProductID = %q, want %q", i, books[i].ProductID, id)
		}
	}

	first := books[0]
	if first.ItemName != "Martin Eden" {
		t.Errorf("item name = %q, want trimmed title", first.ItemName)
	}
	if first.Price != "12.5" {
		t.Errorf("price = %q, want 12.5", first.Price)
	}
	if first.Quantity != "7" {
		t.Errorf("quantity = %q, want 7", first.Quantity)
	}
	if first.Stock != "true" {
		t.Errorf("stock = %q, want true", first.Stock)
	}
	if first.ItemCategory2 != "Roman" {
		t.Errorf("category2 = %q, want Roman", first.ItemCategory2)
	}

	partial := books[1]
	if partial.Price != "abc" || partial.Quantity != "" || partial.Currency != "" {
		t.Errorf("partial entry = %+v, want missing fields defaulted to empty", partial)
	}
	if books[2].ItemName != "" {
		t.Errorf("non-object entry should yield empty fields, got %+v", books[2])
	}
}

func TestExtractBooksUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "html body", body: "<html><body>maintenance</body></html>"},
		{name: "truncated json", body: `{"cp_gtm": {"view_products": {"1": {`},
		{name: "missing container", body: `{"html": {}}`},
		{name: "null container", body: `{"cp_gtm": null}`},
		{name: "missing products", body: `{"cp_gtm": {}}`},
		{name: "products as empty array", body: `{"cp_gtm": {"view_products": []}}`},
		{name: "products empty object", body: `{"cp_gtm": {"view_products": {}}}`},
		{name: "top level array", body: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if books := ExtractBooks([]byte(tt.body)); len(books) != 0 {
				t.Fatalf("ExtractBooks(%q) = %d books, want 0", tt.body, len(books))
			}
		})
	}
}

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name    string
		book    *models.Book
		wantErr bool
	}{
		{name: "valid", book: &models.Book{ProductID: "1", ItemName: "Book"}, wantErr: false},
		{name: "missing id", book: &models.Book{ItemName: "Book"}, wantErr: true},
		{name: "blank id", book: &models.Book{ProductID: "   "}, wantErr: true},
		{name: "nil", book: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBook(tt.book)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBook() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{input: "12.50", want: 12.5, wantOK: true},
		{input: " 8 ", want: 8, wantOK: true},
		{input: "0", want: 0, wantOK: true},
		{input: "1e2", want: 100, wantOK: true},
		{input: "", wantOK: false},
		{input: "abc", wantOK: false},
		{input: "12,50", wantOK: false},
		{input: "NaN", wantOK: false},
		{input: "Inf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{input: "5", want: 5, wantOK: true},
		{input: "0", want: 0, wantOK: true},
		{input: "120.0", want: 120, wantOK: true},
		{input: "-3", want: -3, wantOK: true},
		{input: "2.5", wantOK: false},
		{input: "many", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("ParseQuantity(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Roman \n"); got != "Roman" {
		t.Fatalf("NormalizeText = %q, want Roman", got)
	}
}
