package database

import (
	"context"
	"fmt"

	"github.com/viktsys/woolauction/filter"
	"github.com/viktsys/woolauction/models"
	"gorm.io/gorm"
)

// FetchOptions shapes a lot fetch. Zero Limit means unbounded.
type FetchOptions struct {
	Limit       int
	NewestFirst bool
}

// FetchLots returns the lots matching q ordered by sale date.
func (s *Store) FetchLots(ctx context.Context, q filter.Query, opts FetchOptions) ([]models.Lot, error) {
	var lots []models.Lot
	err := s.do(ctx, func(db *gorm.DB) error {
		lots = nil
		return lotQuery(db, q, opts).Find(&lots).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lots: %w", err)
	}
	return lots, nil
}

// BalesByDate sums bales per sale date, ascending.
func (s *Store) BalesByDate(ctx context.Context, q filter.Query) ([]models.DailyBales, error) {
	var rows []models.DailyBales
	err := s.do(ctx, func(db *gorm.DB) error {
		rows = nil
		return balesQuery(db, q).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum bales: %w", err)
	}
	return rows, nil
}

func lotQuery(db *gorm.DB, q filter.Query, opts FetchOptions) *gorm.DB {
	tx := db.Model(&models.Lot{}).Select(models.LotColumns).Where(q.Expression())
	if opts.NewestFirst {
		tx = tx.Order("sale_date DESC")
	} else {
		tx = tx.Order("sale_date ASC")
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	return tx
}

func balesQuery(db *gorm.DB, q filter.Query) *gorm.DB {
	return db.Model(&models.Lot{}).
		Select("sale_date, COALESCE(SUM(bales), 0) AS total_bales").
		Where(q.Expression()).
		Where("sale_date IS NOT NULL").
		Group("sale_date").
		Order("sale_date")
}

// FilterRanges returns min/max of the filterable columns over lots priced
// above floor. Price stays in cents, matching the price column filter.
func (s *Store) FilterRanges(ctx context.Context, floor int64) (models.FilterRanges, error) {
	var r models.FilterRanges
	err := s.do(ctx, func(db *gorm.DB) error {
		return db.Raw(`
			SELECT
				MIN(colour) AS min_colour, MAX(colour) AS max_colour,
				MIN(micron) AS min_micron, MAX(micron) AS max_micron,
				MIN(yield) AS min_yield, MAX(yield) AS max_yield,
				MIN(vegetable_matter) AS min_vm, MAX(vegetable_matter) AS max_vm,
				MIN(price) AS min_price, MAX(price) AS max_price
			FROM auction_data_joined
			WHERE price > ?
		`, floor).Scan(&r).Error
	})
	if err != nil {
		return models.FilterRanges{}, fmt.Errorf("failed to load filter ranges: %w", err)
	}
	return r, nil
}
