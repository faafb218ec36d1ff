// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kvsync keeps the resource registry in lock-step with a prefix in
// a remote key-value store: Disconnected -> Listing ->
// Watching -> Disconnected, with fixed backoff on failure at either step.
package kvsync

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pingsix/pingsix/internal/config"
)

// Client is the subset of *clientv3.Client the engine and the admin API
// depend on; narrowed so tests can supply a fake without an etcd server.
type Client interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Watch(ctx context.Context, key string, opts ...clientv3.OpOption) clientv3.WatchChan
	Close() error
}

// Dial opens a client against the configured etcd endpoints.
func Dial(cfg config.EtcdConfig) (Client, error) {
	connectTimeout := time.Duration(cfg.ConnectTimeout * float64(time.Second))
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Hosts,
		DialTimeout: connectTimeout,
		Username:    cfg.User,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
