// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package patchsync

import (
	"fmt"

	"github.com/petar-djukic/patchsync/internal/resolver"
)

// New validates the config and returns a ready-to-use Client.
func New(cfg Config) (*Client, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: Store is required", ErrInvalidConfig)
	}
	if cfg.MaxAttempts < 0 {
		return nil, fmt.Errorf("%w: MaxAttempts must not be negative", ErrInvalidConfig)
	}

	res, err := resolver.New(resolver.Config{
		Store:       cfg.Store,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Client{
		store: cfg.Store,
		ref:   cfg.Ref,
		res:   res,
	}, nil
}
