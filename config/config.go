package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
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

// CompletionConfig configures the hosted generation provider.
type CompletionConfig struct {
	ApiUrl     string `yaml:"api_url" json:"api_url"`
	ApiKey     string `yaml:"api_key" json:"api_key"`
	TextModel  string `yaml:"text_model" json:"text_model"`
	ImageModel string `yaml:"image_model" json:"image_model"`
	Timeout    int    `yaml:"timeout" json:"timeout"` // seconds, per generation call
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key" json:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	SuccessURL    string `yaml:"success_url" json:"success_url"`
	CancelURL     string `yaml:"cancel_url" json:"cancel_url"`
	CentsPerUnit  int64  `yaml:"cents_per_unit" json:"cents_per_unit"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System     SysConfig        `yaml:"system" json:"system"`
	Web        WebConfig        `yaml:"web" json:"web"`
	Database   DBConfig         `yaml:"database" json:"database"`
	Completion CompletionConfig `yaml:"completion" json:"completion"`
	Stripe     StripeConfig     `yaml:"stripe" json:"stripe"`
	Logger     LogConfig        `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GenerationTimeout() time.Duration {
	if c.Completion.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Completion.Timeout) * time.Second
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "LaunchPad",
		Location: "Asia/Shanghai",
		Workdir:  "/var/launchpad",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1880,
		Secret:    "9b6de5cc-launchpad-0cc4-a9b24f",
		JwtExpire: 168,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "launchpad_v1",
		User:     "postgres",
		Passwd:   "launchpad",
		MaxConn:  100,
		IdleConn: 10,
	},
	Completion: CompletionConfig{
		ApiUrl:     "https://generativelanguage.googleapis.com",
		TextModel:  "gemini-2.5-pro",
		ImageModel: "imagen-4.0-generate-001",
		Timeout:    60,
	},
	Stripe: StripeConfig{
		SuccessURL:   "http://localhost:1880/dashboard?success=true",
		CancelURL:    "http://localhost:1880/dashboard?canceled=true",
		CentsPerUnit: 100,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/launchpad/launchpad.log",
	},
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v == "true" || v == "1" || v == "on"
	}
}

// LoadConfig reads configuration from a YAML file and applies environment
// overrides. A missing path falls back to the defaults.
func LoadConfig(cfile string) *AppConfig {
	_ = godotenv.Load()

	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
			}
		}
	}

	setEnvValue("LAUNCHPAD_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("LAUNCHPAD_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("LAUNCHPAD_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("LAUNCHPAD_DB_HOST", &cfg.Database.Host)
	setEnvValue("LAUNCHPAD_DB_NAME", &cfg.Database.Name)
	setEnvValue("LAUNCHPAD_DB_USER", &cfg.Database.User)
	setEnvValue("LAUNCHPAD_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("GOOGLE_GENERATIVE_AI_API_KEY", &cfg.Completion.ApiKey)
	setEnvValue("LAUNCHPAD_TEXT_MODEL", &cfg.Completion.TextModel)
	setEnvValue("LAUNCHPAD_IMAGE_MODEL", &cfg.Completion.ImageModel)

	setEnvValue("STRIPE_SECRET_KEY", &cfg.Stripe.SecretKey)
	setEnvValue("STRIPE_WEBHOOK_SECRET", &cfg.Stripe.WebhookSecret)

	return cfg
}
