// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusProductions   *prometheus.CounterVec
	prometheusUnitsProduced prometheus.Counter
	prometheusConversions   *prometheus.CounterVec
	prometheusUnitsConsumed prometheus.Counter
	prometheusCycles        *prometheus.CounterVec
	prometheusUnitsHeld     prometheus.Gauge

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusProductions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmint_productions",
			Help: "Number of external production calls by result",
		},
		[]string{"result"},
	)
	prometheusUnitsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batchmint_units_produced",
			Help: "Number of unit ids reported by successful productions",
		},
	)
	prometheusConversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmint_conversions",
			Help: "Number of external group conversions by result",
		},
		[]string{"result"},
	)
	prometheusUnitsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batchmint_units_consumed",
			Help: "Number of unit ids removed after confirmed conversions",
		},
	)
	prometheusCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmint_cycles",
			Help: "Number of full cycles by result",
		},
		[]string{"result"},
	)
	prometheusUnitsHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "batchmint_units_held",
			Help: "Number of units in the local store",
		},
	)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
