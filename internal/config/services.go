package config

import (
	"os"
	"strconv"
	"time"
)

type FeedbackSvcCfg struct {
	// CacheBackend is "redis" or "memory"
	CacheBackend string
	CacheTTL     time.Duration
}

func NewFeedbackSvcCfg() *FeedbackSvcCfg {
	backend := os.Getenv("FEEDBACK_CACHE_BACKEND")
	if backend == "" {
		backend = "redis"
	}
	ttlSec, err := strconv.Atoi(os.Getenv("FEEDBACK_CACHE_TTL_SEC"))
	if err != nil {
		ttlSec = 24 * 60 * 60
	}
	return &FeedbackSvcCfg{
		CacheBackend: backend,
		CacheTTL:     time.Duration(ttlSec) * time.Second,
	}
}

type OutputStoreCfg struct {
	// Dir is the root every output filename is resolved against
	Dir string
}

func NewOutputStoreCfg() *OutputStoreCfg {
	dir := os.Getenv("OUTPUT_DIR")
	if dir == "" {
		dir = "./media"
	}
	return &OutputStoreCfg{Dir: dir}
}

type ReceiptCfg struct {
	// SecretKey is the hex encoded 32 byte secretbox key
	SecretKey string
}

func NewReceiptCfg() *ReceiptCfg {
	return &ReceiptCfg{SecretKey: os.Getenv("RECEIPT_SECRET_KEY")}
}
