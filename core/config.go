package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	AppName  string
	WorkDir  string

	SecretKey        []byte
	FrontendBaseURL  string
	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string

	Server struct {
		Host               string
		Addr               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Database struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	Attendance struct {
		// DedupWindow is how far back a prior record by the same device
		// fingerprint blocks a new submission.
		DedupWindow            time.Duration
		DefaultSessionDuration time.Duration
		ReportInterval         time.Duration
		ReportRecipient        string
	}

	Operator struct {
		Username     string
		PasswordHash string // bcrypt; generate with `admin hashpassword`
	}
}

// IsDBEnabled reports whether a database host was configured; without one the
// in-memory record store is used.
func (c *Config) IsDBEnabled() bool { return c.Database.Host != "" }

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mahudhurio")
	v.SetDefault("secretKey", "k=2$bq7sm#0^ae)x_2!dhr&9vw(5u+4y$z8$3f-ne6c7f@p0!j")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 8*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("attendanceDedupWindow", 24*time.Hour)
	v.SetDefault("attendanceDefaultSessionDuration", 30*time.Minute)
	v.SetDefault("operatorUsername", "teacher")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		AppName:          v.GetString("appName"),
		WorkDir:          wd,
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Database.Engine = v.GetString("dbEngine")
	conf.Database.Host = v.GetString("dbHost")
	conf.Database.Port = v.GetString("dbPort")
	conf.Database.Name = v.GetString("dbName")
	conf.Database.User = v.GetString("dbUser")
	conf.Database.Password = v.GetString("dbPassword")
	conf.Database.DisableTLS = v.GetBool("dbDisableTLS")
	conf.Attendance.DedupWindow = v.GetDuration("attendanceDedupWindow")
	conf.Attendance.DefaultSessionDuration = v.GetDuration("attendanceDefaultSessionDuration")
	conf.Attendance.ReportInterval = v.GetDuration("attendanceReportInterval")
	conf.Attendance.ReportRecipient = v.GetString("attendanceReportRecipient")
	conf.Operator.Username = v.GetString("operatorUsername")
	conf.Operator.PasswordHash = v.GetString("operatorPasswordHash")
	return conf
}
