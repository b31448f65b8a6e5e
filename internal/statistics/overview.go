// Package statistics summarizes review progress per hour.
package statistics

import (
	"math"
	"strconv"

	"github.com/samber/lo"

	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/review"
)

// BlockStatus is the review progress of one block.
type BlockStatus string

const (
	BlockStatusPending     BlockStatus = "Pending"
	BlockStatusReviewed    BlockStatus = "Reviewed"
	BlockStatusCorrections BlockStatus = "Corrections"
)

// StatusOf derives a block status from the corrections recorded for it.
// A block without corrections is pending, a block whose corrections are all
// fixed is reviewed, and any open correction marks it as having corrections.
func StatusOf(corrections []review.Correction) BlockStatus {
	if len(corrections) == 0 {
		return BlockStatusPending
	}
	if lo.EveryBy(corrections, func(c review.Correction) bool { return c.Status == review.StatusFixed }) {
		return BlockStatusReviewed
	}
	return BlockStatusCorrections
}

// Hour identifies one hour of the course.
type Hour struct {
	ID    int
	Title string
}

// HourStatistics holds the block counts of one hour.
type HourStatistics struct {
	HourID      int    `json:"hourId"`
	Title       string `json:"title"`
	TotalBlocks int    `json:"totalBlocks"`
	Reviewed    int    `json:"reviewed"`
	Pending     int    `json:"pending"`
	Corrections int    `json:"corrections"`
}

// ReviewedPercent is the rounded share of reviewed blocks.
func (h HourStatistics) ReviewedPercent() int {
	if h.TotalBlocks == 0 {
		return 0
	}
	return int(math.Round(float64(h.Reviewed) / float64(h.TotalBlocks) * 100))
}

// Overview holds per-hour statistics and totals across hours.
type Overview struct {
	Hours            []HourStatistics `json:"hours"`
	TotalBlocks      int              `json:"totalBlocks"`
	TotalReviewed    int              `json:"totalReviewed"`
	TotalPending     int              `json:"totalPending"`
	TotalCorrections int              `json:"totalCorrections"`
}

// CalculateOverview counts the manifest blocks of every hour by status.
// TotalCorrections is the number of correction records.
func CalculateOverview(hours []Hour, manifest []string, corrections []review.Correction) Overview {
	byBlock := lo.GroupBy(corrections, func(c review.Correction) string {
		return c.BlockID
	})

	overview := Overview{
		Hours:            make([]HourStatistics, 0, len(hours)),
		TotalCorrections: len(corrections),
	}
	for _, hour := range hours {
		stats := HourStatistics{HourID: hour.ID, Title: hour.Title}
		for _, ref := range content.FilterByHour(manifest, strconv.Itoa(hour.ID)) {
			stats.TotalBlocks++
			switch StatusOf(byBlock[content.BlockIDFromReference(ref)]) {
			case BlockStatusReviewed:
				stats.Reviewed++
			case BlockStatusCorrections:
				stats.Corrections++
			default:
				stats.Pending++
			}
		}

		overview.Hours = append(overview.Hours, stats)
		overview.TotalBlocks += stats.TotalBlocks
		overview.TotalReviewed += stats.Reviewed
		overview.TotalPending += stats.Pending
	}
	return overview
}
