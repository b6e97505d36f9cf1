package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard/summary", dashboardSummary)
	webserver.ApiGET("/dashboard/metrics", dashboardMetrics)
}

type dashboardData struct {
	BookingCounts  map[string]int64 `json:"booking_counts"`
	NewQuotes      int64            `json:"new_quotes"`
	PendingReviews int64            `json:"pending_reviews"`
	Revenue        float64          `json:"revenue"`
	OutstandingDue float64          `json:"outstanding_due"`
	MeanBooking    float64          `json:"mean_booking"`
	MedianBooking  float64          `json:"median_booking"`
	MeanRating     float64          `json:"mean_rating"`
	Upcoming       []domain.Booking `json:"upcoming"`
}

func dashboardSummary(c echo.Context) error {
	db := GetDB(c)
	data := dashboardData{BookingCounts: map[string]int64{}}

	for _, status := range domain.BookingStatuses {
		var n int64
		db.Model(&domain.Booking{}).Where("status = ?", status).Count(&n)
		data.BookingCounts[status] = n
	}
	db.Model(&domain.Quote{}).Where("status = ?", domain.QuoteNew).Count(&data.NewQuotes)
	db.Model(&domain.Review{}).Where("status = ?", domain.ReviewPending).Count(&data.PendingReviews)

	var bookings []domain.Booking
	if err := db.Where("status <> ?", domain.BookingCancelled).Find(&bookings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bookings", err.Error())
	}

	values := make([]float64, 0, len(bookings))
	for _, b := range bookings {
		values = append(values, b.Total)
		if b.DepositPaid {
			data.Revenue += b.DepositAmount
		}
		if b.FinalPaid {
			data.Revenue += b.Total - b.DepositAmount
		} else if b.DepositPaid {
			data.OutstandingDue += b.Total - b.DepositAmount
		}
	}
	data.Revenue = common.RoundCents(data.Revenue)
	data.OutstandingDue = common.RoundCents(data.OutstandingDue)
	if len(values) > 0 {
		data.MeanBooking, _ = stats.Mean(values)
		data.MedianBooking, _ = stats.Median(values)
		data.MeanBooking = common.RoundCents(data.MeanBooking)
		data.MedianBooking = common.RoundCents(data.MedianBooking)
	}

	var reviews []domain.Review
	db.Where("status = ?", domain.ReviewApproved).Find(&reviews)
	if len(reviews) > 0 {
		ratings := make([]float64, 0, len(reviews))
		for _, r := range reviews {
			ratings = append(ratings, float64(r.Rating))
		}
		data.MeanRating, _ = stats.Mean(ratings)
	}

	db.Where("status IN ? AND scheduled_at >= ?",
		[]string{domain.BookingPending, domain.BookingConfirmed}, time.Now()).
		Order("scheduled_at ASC").Limit(10).Find(&data.Upcoming)

	return ok(c, data)
}

// dashboardMetrics returns system gauge history from the embedded store
func dashboardMetrics(c echo.Context) error {
	name := c.QueryParam("name")
	if !common.InSlice(name, []string{
		"system_cpuuse", "system_memuse", "glowbook_cpuuse", "glowbook_memuse",
	}) {
		return fail(c, http.StatusBadRequest, "INVALID_METRIC", "Unknown metric name", nil)
	}
	start, end := parseDateRange(c)
	if start.IsZero() {
		start = time.Now().Add(-time.Hour * 24)
	}
	if end.IsZero() {
		end = time.Now()
	}
	points := metrics.QueryRange(name, start.Unix(), end.Unix())
	return ok(c, points)
}
