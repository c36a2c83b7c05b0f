package model

import "github.com/shopspring/decimal"

// SampleProducts are inserted by the seeding step when the products table is empty.
func SampleProducts() []Product {
	return []Product{
		{Name: "iPhone 12 Screen", Barcode: "1234567890123", Price: decimal.RequireFromString("45.99"), Stock: 15, Category: "Screen"},
		{Name: "Samsung S21 Battery", Barcode: "2345678901234", Price: decimal.RequireFromString("29.99"), Stock: 8, Category: "Battery"},
		{Name: "iPhone 13 Pro Case", Barcode: "3456789012345", Price: decimal.RequireFromString("12.99"), Stock: 25, Category: "Case"},
		{Name: "USB-C Cable 2m", Barcode: "4567890123456", Price: decimal.RequireFromString("8.99"), Stock: 30, Category: "Cable"},
		{Name: "Bluetooth Earphones", Barcode: "5678901234567", Price: decimal.RequireFromString("19.99"), Stock: 12, Category: "Audio"},
		{Name: "Screwdriver Kit", Barcode: "6789012345678", Price: decimal.RequireFromString("15.99"), Stock: 5, Category: "Tool"},
		{Name: "Fast Charger", Barcode: "7890123456789", Price: decimal.RequireFromString("24.99"), Stock: 18, Category: "Cable"},
	}
}
