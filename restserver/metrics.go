// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import "github.com/prometheus/client_golang/prometheus"

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "diffeo",
		Subsystem: "towel",
		Name:      "api_requests_total",
		Help:      "Number of API requests served",
	},
	[]string{
		"api",
		"kind",
		"intent",
		"status",
	},
)

func init() {
	prometheus.MustRegister(requestCount)
}
