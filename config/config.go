package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// Secret signs admin JWT access tokens
	Secret          string `yaml:"secret" json:"secret"`
	AccessTokenTTL  int    `yaml:"access_token_ttl" json:"access_token_ttl"`   // minutes
	RefreshTokenTTL int    `yaml:"refresh_token_ttl" json:"refresh_token_ttl"` // hours
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type SquareConfig struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	AccessToken string `yaml:"access_token" json:"access_token"`
	LocationId  string `yaml:"location_id" json:"location_id"`
}

type GoogleConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	ApiKey   string `yaml:"api_key" json:"api_key"`
	PlaceId  string `yaml:"place_id" json:"place_id"`
	// CacheTTL is the Google reviews cache lifetime in seconds
	CacheTTL int64 `yaml:"cache_ttl" json:"cache_ttl"`
}

type BrevoConfig struct {
	SmtpHost string `yaml:"smtp_host" json:"smtp_host"`
	SmtpPort int    `yaml:"smtp_port" json:"smtp_port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	// BusinessEmail receives new quote/booking notifications
	BusinessEmail string `yaml:"business_email" json:"business_email"`
}

type TelnyxConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	ApiKey   string `yaml:"api_key" json:"api_key"`
	From     string `yaml:"from" json:"from"`
	// BusinessPhone receives new quote/booking SMS alerts
	BusinessPhone string `yaml:"business_phone" json:"business_phone"`
}

type BookingConfig struct {
	// DepositPercent is the default deposit percentage applied to new bookings
	DepositPercent float64 `yaml:"deposit_percent" json:"deposit_percent"`
}

type AdminConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
	Square   SquareConfig  `yaml:"square" json:"square"`
	Google   GoogleConfig  `yaml:"google" json:"google"`
	Brevo    BrevoConfig   `yaml:"brevo" json:"brevo"`
	Telnyx   TelnyxConfig  `yaml:"telnyx" json:"telnyx"`
	Booking  BookingConfig `yaml:"booking" json:"booking"`
	Admin    AdminConfig   `yaml:"admin" json:"admin"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Glowbook",
		Location: "America/New_York",
		Workdir:  "/var/glowbook",
		Debug:    true,
	},
	Web: WebConfig{
		Host:            "0.0.0.0",
		Port:            1898,
		Secret:          "9b6bc6d3-4a7c-0a0c-8899-glowbook-web",
		AccessTokenTTL:  30,
		RefreshTokenTTL: 168,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "glowbook",
		User:     "postgres",
		Passwd:   "glowbook",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/glowbook/glowbook.log",
	},
	Square: SquareConfig{
		Endpoint: "https://connect.squareupsandbox.com",
	},
	Google: GoogleConfig{
		Endpoint: "https://maps.googleapis.com/maps/api/place",
		CacheTTL: 21600,
	},
	Brevo: BrevoConfig{
		SmtpHost: "smtp-relay.brevo.com",
		SmtpPort: 587,
	},
	Telnyx: TelnyxConfig{
		Endpoint: "https://api.telnyx.com/v2",
	},
	Booking: BookingConfig{
		DepositPercent: 25,
	},
	Admin: AdminConfig{
		Username: "admin",
		Password: "glowbook",
	},
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := fmt.Sscanf(evalue, "%d", val)
	_ = p
	_ = err
}

// LoadConfig reads the YAML configuration file and applies environment
// variable overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err == nil {
				_ = yaml.Unmarshal(data, cfg)
			}
		}
	}

	setEnvValue("GLOWBOOK_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("GLOWBOOK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("GLOWBOOK_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("GLOWBOOK_WEB_PORT", &cfg.Web.Port)
	setEnvValue("GLOWBOOK_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("GLOWBOOK_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("GLOWBOOK_DB_PORT", &cfg.Database.Port)
	setEnvValue("GLOWBOOK_DB_NAME", &cfg.Database.Name)
	setEnvValue("GLOWBOOK_DB_USER", &cfg.Database.User)
	setEnvValue("GLOWBOOK_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("GLOWBOOK_SQUARE_ENDPOINT", &cfg.Square.Endpoint)
	setEnvValue("GLOWBOOK_SQUARE_TOKEN", &cfg.Square.AccessToken)
	setEnvValue("GLOWBOOK_SQUARE_LOCATION", &cfg.Square.LocationId)

	setEnvValue("GLOWBOOK_GOOGLE_APIKEY", &cfg.Google.ApiKey)
	setEnvValue("GLOWBOOK_GOOGLE_PLACEID", &cfg.Google.PlaceId)

	setEnvValue("GLOWBOOK_BREVO_USERNAME", &cfg.Brevo.Username)
	setEnvValue("GLOWBOOK_BREVO_PASSWORD", &cfg.Brevo.Password)
	setEnvValue("GLOWBOOK_BREVO_FROM", &cfg.Brevo.From)
	setEnvValue("GLOWBOOK_BREVO_BIZEMAIL", &cfg.Brevo.BusinessEmail)

	setEnvValue("GLOWBOOK_TELNYX_APIKEY", &cfg.Telnyx.ApiKey)
	setEnvValue("GLOWBOOK_TELNYX_FROM", &cfg.Telnyx.From)

	setEnvValue("GLOWBOOK_ADMIN_USERNAME", &cfg.Admin.Username)
	setEnvValue("GLOWBOOK_ADMIN_PASSWORD", &cfg.Admin.Password)

	return cfg
}
