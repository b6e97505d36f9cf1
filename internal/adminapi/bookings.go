package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

type bookingUpdatePayload struct {
	Status      string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	ScheduledAt string `json:"scheduled_at" validate:"omitempty"`
	Address     string `json:"address" validate:"omitempty,max=500"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
	DepositPaid *bool  `json:"deposit_paid"`
	FinalPaid   *bool  `json:"final_paid"`
}

func registerBookingRoutes() {
	webserver.ApiGET("/bookings", listBookings)
	webserver.ApiGET("/bookings/export", exportBookings)
	webserver.ApiGET("/bookings/:id", getBooking)
	webserver.ApiPUT("/bookings/:id", updateBooking)
	webserver.ApiDELETE("/bookings/:id", deleteBooking)
}

func bookingFilter(c echo.Context) *gorm.DB {
	base := GetDB(c).Model(&domain.Booking{})

	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		base = base.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		op := likeOperator(GetDB(c))
		base = base.Where("customer_name "+op+" ? OR email "+op+" ? OR ref "+op+" ?",
			"%"+q+"%", "%"+q+"%", "%"+q+"%")
	}
	start, end := parseDateRange(c)
	if !start.IsZero() {
		base = base.Where("scheduled_at >= ?", start)
	}
	if !end.IsZero() {
		base = base.Where("scheduled_at <= ?", end)
	}
	return base
}

func listBookings(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := bookingFilter(c)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bookings", err.Error())
	}
	var bookings []domain.Booking
	order := sortOrder(c, []string{"id", "scheduled_at", "created_at", "total", "status"}, "id")
	if err := base.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&bookings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bookings", err.Error())
	}
	return paged(c, bookings, total, page, pageSize)
}

func getBooking(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID", nil)
	}
	var booking domain.Booking
	if err := GetDB(c).Where("id = ?", id).First(&booking).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", err.Error())
	}

	var addons []domain.BookingAddon
	GetDB(c).Where("booking_id = ?", id).Find(&addons)

	return ok(c, map[string]interface{}{
		"booking": booking,
		"addons":  addons,
	})
}

func updateBooking(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID", nil)
	}
	var payload bookingUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse booking parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking parameters", err.Error())
	}

	var booking domain.Booking
	if err := GetDB(c).Where("id = ?", id).First(&booking).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query booking", err.Error())
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Status != "" {
		if !common.InSlice(payload.Status, domain.BookingStatuses) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown booking status", nil)
		}
		updates["status"] = payload.Status
	}
	if payload.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, payload.ScheduledAt)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "scheduled_at must be RFC3339", nil)
		}
		updates["scheduled_at"] = t
	}
	if payload.Address != "" {
		updates["address"] = payload.Address
	}
	if payload.Notes != "" {
		updates["notes"] = payload.Notes
	}
	if payload.DepositPaid != nil {
		updates["deposit_paid"] = *payload.DepositPaid
	}
	if payload.FinalPaid != nil {
		updates["final_paid"] = *payload.FinalPaid
	}

	if err := GetDB(c).Model(&booking).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update booking", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&booking)
	oprLog(c, "booking_update", "updated booking "+booking.Ref)
	return ok(c, booking)
}

func deleteBooking(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID", nil)
	}
	if err := GetDB(c).Where("booking_id = ?", id).Delete(&domain.BookingAddon{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete booking addons", err.Error())
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Booking{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete booking", err.Error())
	}
	oprLog(c, "booking_delete", fmt.Sprintf("deleted booking %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

// exportBookings writes the filtered booking list as an XLSX download
func exportBookings(c echo.Context) error {
	var bookings []domain.Booking
	if err := bookingFilter(c).Order("scheduled_at DESC").Limit(10000).Find(&bookings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bookings", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Bookings"
	xlsx.SetSheetName("Sheet1", sheet)

	headers := []string{"Ref", "Customer", "Email", "Phone", "Package", "Scheduled",
		"Subtotal", "Discount", "Total", "Deposit", "Deposit Paid", "Final Paid", "Status"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(sheet, cell, h)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.Ref, b.CustomerName, b.Email, b.Phone, b.PackageName,
			b.ScheduledAt.Format("2006-01-02 15:04"),
			b.Subtotal, b.Discount, b.Total, b.DepositAmount,
			b.DepositPaid, b.FinalPaid, b.Status,
		}
		for col, v := range values {
			cell := fmt.Sprintf("%c%d", 'A'+col, row+2)
			xlsx.SetCellValue(sheet, cell, v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="bookings.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	oprLog(c, "booking_export", fmt.Sprintf("exported %d bookings", len(bookings)))
	return xlsx.Write(c.Response())
}
