package config

import "os"

type AppConfig struct {
	DebugMode      bool
	HTTPPort       string
	FeedbackSvcCfg *FeedbackSvcCfg
	OutputStoreCfg *OutputStoreCfg
	ReceiptCfg     *ReceiptCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		HTTPPort:       port,
		FeedbackSvcCfg: NewFeedbackSvcCfg(),
		OutputStoreCfg: NewOutputStoreCfg(),
		ReceiptCfg:     NewReceiptCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}
