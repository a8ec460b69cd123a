/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage provides the durable key-value stores player settings are
// written to. Keys live in per-player namespaces.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

// KV is a single namespace of keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Backend hands out namespaces and owns the underlying resources.
type Backend interface {
	Namespace(ns string) KV
	Close() error
}
