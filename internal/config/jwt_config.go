package config

import "os"

type JwtConfig struct {
	Secret string
	// Method is the HMAC signing method callers' tokens are expected to use
	Method string
}

func NewJwtConfig() *JwtConfig {
	method := os.Getenv("JWT_METHOD")
	if method == "" {
		method = "HS256"
	}
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
		Method: method,
	}
}
