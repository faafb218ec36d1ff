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

// Package builtin holds the two plugins every deployment gets for free:
// logger and prometheus. Both run only the logging hook and
// share priority 500, so chain order between them falls back to name order.
package builtin

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/plugin"
)

const loggerPriority = 500

// Logger emits one structured line per completed request.
type Logger struct {
	log *logrus.Logger
}

// NewLoggerFactory returns a plugin.Factory bound to log.
func NewLoggerFactory(log *logrus.Logger) plugin.Factory {
	return func(map[string]any) (plugin.Plugin, error) {
		return &Logger{log: log}, nil
	}
}

func (l *Logger) Name() string  { return "logger" }
func (l *Logger) Priority() int { return loggerPriority }

// Logging implements plugin.LoggingHook.
func (l *Logger) Logging(s plugin.Session, err error, ctx *plugin.ProxyContext) {
	fields := logrus.Fields{
		"code":            s.StatusCode(),
		"uri":             s.Request().URL.Path,
		"remote_addr":     s.Request().RemoteAddr,
		"latency_seconds": time.Since(ctx.RequestStart).Seconds(),
		"ingress_bytes":   s.BytesIn(),
		"egress_bytes":    s.BytesOut(),
	}
	if ctx.Route != nil {
		fields["route"] = ctx.Route.ID
		fields["host"] = s.Request().Host
	}
	if ctx.Service != nil {
		fields["service"] = ctx.Service.ID
	}
	if upstream, ok := ctx.Vars["upstream"]; ok {
		fields["upstream"] = upstream
	}

	entry := l.log.WithFields(fields)
	if err != nil {
		entry.WithError(err).Warn("request completed with error")
		return
	}
	entry.Info("request completed")
}
