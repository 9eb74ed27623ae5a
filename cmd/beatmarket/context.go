// cmd/beatmarket/context.go
package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/database"
	"github.com/javajoker/beatmarket/internal/logging"
	"github.com/javajoker/beatmarket/internal/services"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
	log        *logrus.Logger

	market *services.Marketplace
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("load configuration: %w", err)
			return
		}
		c.config = cfg
		c.log = logging.New(cfg.Log)
	})
	return c.config, c.configErr
}

// openMarket opens the configured stores and loads the marketplace state.
func (c *commandContext) openMarket(ctx context.Context) (*services.Marketplace, error) {
	if c.market != nil {
		return c.market, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	store, err := database.OpenStore(cfg, c.log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	blobs, err := blobstore.Open(cfg.Blob, cfg.AWS)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	market := services.NewMarketplace(cfg, store, blobs, c.log)
	if err := market.Bootstrap(ctx); err != nil {
		market.Close()
		return nil, fmt.Errorf("bootstrap marketplace: %w", err)
	}
	c.market = market
	return market, nil
}

func (c *commandContext) close() error {
	if c.market == nil {
		return nil
	}
	err := c.market.Close()
	c.market = nil
	return err
}
