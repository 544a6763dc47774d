package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Providers struct {
		Geocoding struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"geocoding"`
		Weather struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"weather"`
		HolidayCalendar struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"holidayCalendar"`
		KnowledgeGraph struct {
			Endpoint string        `mapstructure:"endpoint"`
			Timeout  time.Duration `mapstructure:"timeout"`
		} `mapstructure:"knowledgeGraph"`
		EnhancedHolidays struct {
			Endpoint string        `mapstructure:"endpoint"`
			Timeout  time.Duration `mapstructure:"timeout"`
		} `mapstructure:"enhancedHolidays"`
		History struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"history"`
	} `mapstructure:"providers"`
	Recommendation struct {
		Endpoint   string        `mapstructure:"endpoint"`
		Timeout    time.Duration `mapstructure:"timeout"` // Hard client-side cap racing the request.
		MaxRetries int           `mapstructure:"maxRetries"`
		RetryDelay time.Duration `mapstructure:"retryDelay"`
	} `mapstructure:"recommendation"`
	Search struct {
		FestivalRadiusKm    float64       `mapstructure:"festivalRadiusKm"`
		FestivalLimit       int           `mapstructure:"festivalLimit"`
		SuccessDisplayDelay time.Duration `mapstructure:"successDisplayDelay"`
		ErrorDisplayDelay   time.Duration `mapstructure:"errorDisplayDelay"`
	} `mapstructure:"search"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
