package models

import (
	"time"
)

// Lot is one auctioned wool lot as exposed by the auction_data_joined view.
// Price is in cents per kg.
type Lot struct {
	ID              uint      `gorm:"column:id;primaryKey" json:"id"`
	LotNumber       *string   `gorm:"column:lot_number" json:"lot_number"`
	SaleDate        time.Time `gorm:"column:sale_date" json:"-"`
	Bales           *float64  `gorm:"column:bales" json:"bales"`
	Kg              *float64  `gorm:"column:kg" json:"kg"`
	Price           int64     `gorm:"column:price" json:"price"`
	Colour          *float64  `gorm:"column:colour" json:"colour"`
	Micron          *float64  `gorm:"column:micron" json:"micron"`
	Yield           *float64  `gorm:"column:yield" json:"yield"`
	VegetableMatter *float64  `gorm:"column:vegetable_matter" json:"vegetable_matter"`
	WoolTypeID      *int64    `gorm:"column:wool_type_id" json:"wool_type_id"`
	TypeCombined    *string   `gorm:"column:type_combined" json:"type_combined"`
	Location        *string   `gorm:"column:location" json:"location"`
	IsSold          *int64    `gorm:"column:is_sold" json:"is_sold"`
	SellerName      *string   `gorm:"column:seller_name" json:"seller_name"`
	FarmBrandName   *string   `gorm:"column:farm_brand_name" json:"farm_brand_name"`
}

// TableName keeps gorm on the existing view; its schema is not managed here.
func (Lot) TableName() string { return "auction_data_joined" }

// LotColumns is the projection used by every lot fetch.
var LotColumns = []string{
	"id", "lot_number", "sale_date", "bales", "kg", "price",
	"colour", "micron", "yield", "vegetable_matter",
	"wool_type_id", "type_combined", "location", "is_sold",
	"seller_name", "farm_brand_name",
}

// DailyBales is one row of the bales-per-sale-date rollup.
type DailyBales struct {
	SaleDate   time.Time `gorm:"column:sale_date" json:"sale_date"`
	TotalBales float64   `gorm:"column:total_bales" json:"total_bales"`
}

// FilterRanges carries min/max of the filterable numeric columns.
type FilterRanges struct {
	MinColour *float64 `gorm:"column:min_colour" json:"min_colour"`
	MaxColour *float64 `gorm:"column:max_colour" json:"max_colour"`
	MinMicron *float64 `gorm:"column:min_micron" json:"min_micron"`
	MaxMicron *float64 `gorm:"column:max_micron" json:"max_micron"`
	MinYield  *float64 `gorm:"column:min_yield" json:"min_yield"`
	MaxYield  *float64 `gorm:"column:max_yield" json:"max_yield"`
	MinVM     *float64 `gorm:"column:min_vm" json:"min_vm"`
	MaxVM     *float64 `gorm:"column:max_vm" json:"max_vm"`
	MinPrice  *float64 `gorm:"column:min_price" json:"min_price"`
	MaxPrice  *float64 `gorm:"column:max_price" json:"max_price"`
}

// TradeExport is one wool-related row of an overseas merchandise export file.
type TradeExport struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	Month           int       `gorm:"index:idx_exports_month_hs" json:"month"`
	Country         string    `gorm:"size:100;index" json:"country"`
	HS              string    `gorm:"column:hs;size:12;index:idx_exports_month_hs" json:"hs"`
	HSDesc          string    `gorm:"column:hs_desc" json:"hs_desc"`
	UOM             string    `gorm:"column:uom;size:20" json:"uom"`
	ExportFOB       float64   `json:"export_fob"`
	ExportQty       float64   `json:"export_qty"`
	ReExportFOB     float64   `json:"re_export_fob"`
	ReExportQty     float64   `json:"re_export_qty"`
	TotalExportFOB  float64   `json:"total_export_fob"`
	TotalExportQty  float64   `json:"total_export_qty"`
	Status          string    `gorm:"size:20" json:"status"`
	WoolCategory    string    `gorm:"size:40" json:"wool_category"`
	ProcessingStage string    `gorm:"size:40" json:"processing_stage"`
	MicronRange     string    `gorm:"size:20" json:"micron_range"`
	SourceFile      string    `json:"-"`
	CreatedAt       time.Time `json:"-"`
}

// ExportMonthlyAggregate stores totals per month and wool category.
type ExportMonthlyAggregate struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Month          int       `gorm:"uniqueIndex:uidx_month_category" json:"month"`
	WoolCategory   string    `gorm:"size:40;uniqueIndex:uidx_month_category" json:"wool_category"`
	TotalExportFOB float64   `json:"total_export_fob"`
	TotalExportQty float64   `json:"total_export_qty"`
	CreatedAt      time.Time `json:"created_at"`
}
