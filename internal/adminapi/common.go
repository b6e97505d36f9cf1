package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/webserver"
	"github.com/glowbooking/glowbook/pkg/common"
)

// InitRouter registers all admin API routes. The web server must be
// initialized first.
func InitRouter() {
	registerAuthRoutes()
	registerOperatorRoutes()
	registerBookingRoutes()
	registerQuoteRoutes()
	registerPackageRoutes()
	registerAddonRoutes()
	registerCouponRoutes()
	registerReviewRoutes()
	registerGalleryRoutes()
	registerSettingsRoutes()
	registerSchedulerRoutes()
	registerDashboardRoutes()
}

// Response is the uniform success envelope
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated results
type ListResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// ErrorResponse is the uniform failure envelope
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, ListResponse{
		Code: 0, Data: data, Total: total, Page: page, PerPage: pageSize,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	if status >= http.StatusInternalServerError {
		zap.L().Error("admin api error",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Any("detail", detail))
		// internal detail never leaves the server
		detail = nil
	}
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Detail: detail})
}

// parsePagination accepts both perPage (front-end) and pageSize (legacy)
func parsePagination(c echo.Context) (page int, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("perPage"))
	if pageSize == 0 {
		pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// parseDateRange reads start/end query params in any common date format
func parseDateRange(c echo.Context) (start, end time.Time) {
	if v := strings.TrimSpace(c.QueryParam("start")); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			start = t
		}
	}
	if v := strings.TrimSpace(c.QueryParam("end")); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			end = t
		}
	}
	return start, end
}

// sortOrder sanitizes the sort/order query params against allowed columns
func sortOrder(c echo.Context, allowed []string, def string) string {
	field := strings.TrimSpace(c.QueryParam("sort"))
	if !common.InSlice(field, allowed) {
		field = def
	}
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return field + " " + order
}

// likeOperator returns the case-insensitive LIKE operator for the dialect
func likeOperator(db *gorm.DB) string {
	if strings.EqualFold(db.Name(), "postgres") {
		return "ILIKE"
	}
	return "LIKE"
}

// oprLog records an admin mutation in sys_opr_log
func oprLog(c echo.Context, action, desc string) {
	oprLogDirect(c, cast.ToString(c.Get(webserver.OprUsernameKey)), action, desc)
}

// oprLogDirect is used where the operator name is known outside the JWT
// context, e.g. at login time.
func oprLogDirect(c echo.Context, username, action, desc string) {
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   username,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
