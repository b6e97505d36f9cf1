package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/glowbooking/glowbook/internal/app"
)

// Context keys set by server middleware for handler packages
const (
	AppContextKey  = "appctx"
	OprIdKey       = "opr_id"
	OprUsernameKey = "opr_username"
	OprLevelKey    = "opr_level"
)

var server *WebServer

type WebServer struct {
	app  app.AppContext
	root *echo.Echo
	pub  *echo.Group
	api  *echo.Group
}

// Init builds the singleton web server. Route registration helpers below
// attach to it, so Init must run before any Api*/Pub* call.
func Init(appCtx app.AppContext) *WebServer {
	server = &WebServer{app: appCtx}
	server.initRouter()
	return server
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := jsoniter.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (s *WebServer) initRouter() {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = jsonSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// expose the application context to every handler
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, s.app)
			return next(c)
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	s.pub = e.Group("/api/v1")

	s.api = e.Group("/api/v1/admin")
	s.api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(s.app.Config().Web.Secret),
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwtv5.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(jwtv5.MapClaims); ok {
				if uid, ok := claims["uid"].(string); ok {
					c.Set(OprIdKey, uid)
				}
				if usr, ok := claims["usr"].(string); ok {
					c.Set(OprUsernameKey, usr)
				}
				if lvl, ok := claims["lvl"].(string); ok {
					c.Set(OprLevelKey, lvl)
				}
			}
		},
	}))

	s.root = e
}

// Start runs the HTTP listener until ctx is cancelled
func (s *WebServer) Start(ctx context.Context) error {
	cfg := s.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))

	errch := make(chan error, 1)
	go func() {
		errch <- s.root.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdownCtx)
	case err := <-errch:
		return err
	}
}

// Echo returns the underlying router (used in handler tests)
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// ApiGET registers an admin (JWT protected) GET route
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers an admin (JWT protected) POST route
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers an admin (JWT protected) PUT route
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers an admin (JWT protected) DELETE route
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// PubGET registers a public GET route
func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

// PubPOST registers a public POST route
func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}
