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

// Conf holds the application configuration; loaded once on startup.
var Conf *Config

type Config struct {
	AppName  string
	Env      string // DEV (local; default), TEST, QA, PROD
	Debug    bool
	TestMode bool
	Build    string

	WorkDir string
	DataDir string // local record store location

	ServerAddr string

	Remote struct {
		BaseURL string
		Timeout time.Duration
	}

	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string
}

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Incluso")
	v.SetDefault("serverAddr", ":8800")
	v.SetDefault("dataDir", filepath.Join(Getwd(), "data"))
	v.SetDefault("remoteBaseUrl", "http://localhost:3000/api")
	v.SetDefault("remoteTimeout", 10*time.Second)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Build:            v.GetString("build"),
		WorkDir:          Getwd(),
		DataDir:          v.GetString("dataDir"),
		ServerAddr:       v.GetString("serverAddr"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Remote.BaseURL = strings.TrimRight(v.GetString("remoteBaseUrl"), "/")
	conf.Remote.Timeout = v.GetDuration("remoteTimeout")
	return conf
}
