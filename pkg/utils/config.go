package utils

import (
	"os"
	"strconv"
)

type StoreConfig struct {
	DataURL     string // when set, sources are discovered over HTTP
	DataDir     string // local source directory (default mode)
	SellerEmail string
	PageSize    int
	HTTPAddr    string
	FeedAddr    string
}

func LoadStoreConfig() StoreConfig {
	cfg := StoreConfig{
		DataURL:     os.Getenv("CARDSTORE_DATA_URL"),
		DataDir:     os.Getenv("CARDSTORE_DATA_DIR"),
		SellerEmail: os.Getenv("CARDSTORE_SELLER_EMAIL"),
		HTTPAddr:    os.Getenv("CARDSTORE_HTTP_ADDR"),
		FeedAddr:    os.Getenv("CARDSTORE_FEED_ADDR"),
		PageSize:    50,
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.SellerEmail == "" {
		// dev default (set CARDSTORE_SELLER_EMAIL for a real store)
		cfg.SellerEmail = "seller@example.com"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.FeedAddr == "" {
		cfg.FeedAddr = ":7070"
	}

	// simple parse; if it fails, keep the default page size
	if s := os.Getenv("CARDSTORE_PAGE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}

	return cfg
}
