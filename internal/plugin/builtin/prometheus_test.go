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

package builtin

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/plugin"
)

func TestPrometheusLoggingIncrementsTotalRequests(t *testing.T) {
	before := testutil.ToFloat64(totalRequests)

	factory := NewPrometheusFactory()
	p, err := factory(nil)
	require.NoError(t, err)
	assert.Equal(t, "prometheus", p.Name())

	req, _ := http.NewRequest(http.MethodGet, "http://a.example/v1", nil)
	sess := &stubSession{req: req, status: 200}
	ctx := plugin.NewProxyContext(&config.Route{ID: "r1"}, &config.Service{ID: "svc1"})

	p.(plugin.LoggingHook).Logging(sess, nil, ctx)

	after := testutil.ToFloat64(totalRequests)
	assert.Equal(t, before+1, after)
}

func TestPrometheusLoggingRecordsStatusAndBandwidth(t *testing.T) {
	factory := NewPrometheusFactory()
	p, err := factory(nil)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "http://a.example/v1", nil)
	sess := &stubSession{req: req, status: 503}
	ctx := plugin.NewProxyContext(&config.Route{ID: "r2"}, nil)

	before := testutil.ToFloat64(httpStatus.WithLabelValues("503", "r2", "", "", "", ""))
	p.(plugin.LoggingHook).Logging(sess, nil, ctx)
	after := testutil.ToFloat64(httpStatus.WithLabelValues("503", "r2", "", "", "", ""))
	assert.Equal(t, before+1, after)

	ingressBefore := testutil.ToFloat64(bandwidth.WithLabelValues("ingress", "r2", "", ""))
	assert.GreaterOrEqual(t, ingressBefore, float64(128))
}
