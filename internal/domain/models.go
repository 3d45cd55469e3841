package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Customer is a sales partner
type Customer struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Customer) Key() string { return strconv.FormatInt(c.ID, 10) }

// Vendor is a purchase partner (supplier)
type Vendor struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (v Vendor) Key() string { return strconv.FormatInt(v.ID, 10) }

// Warehouse is a stock location
type Warehouse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func (w Warehouse) Key() string { return strconv.FormatInt(w.ID, 10) }

// Currency is keyed by its ISO code rather than a numeric id
type Currency struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol,omitempty"`
	Rate   decimal.Decimal `json:"rate"`
}

func (c Currency) Key() string { return c.Code }

// Item is a stocked product
type Item struct {
	ID    int64           `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
	Stock decimal.Decimal `json:"stock"`
}

func (i Item) Key() string { return strconv.FormatInt(i.ID, 10) }

// Label functions used by the pickers. They only format fields and never fail

func CustomerLabel(c Customer) string { return codeName(c.Code, c.Name) }

func VendorLabel(v Vendor) string { return codeName(v.Code, v.Name) }

func WarehouseLabel(w Warehouse) string { return codeName(w.Code, w.Name) }

func CurrencyLabel(c Currency) string {
	if c.Symbol != "" {
		return fmt.Sprintf("%s (%s) %s", c.Code, c.Symbol, c.Name)
	}
	return codeName(c.Code, c.Name)
}

func ItemLabel(i Item) string {
	label := codeName(i.SKU, i.Name)
	if i.Unit != "" {
		label += " / " + i.Unit
	}
	return label + "  " + i.Price.StringFixed(2)
}

func codeName(code, name string) string {
	switch {
	case code == "":
		return name
	case name == "":
		return code
	default:
		return code + " - " + name
	}
}
