// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-towel/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var itemCount = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "diffeo",
		Subsystem: "towel",
		Name:      "items",
		Help:      "Number of items of each kind",
	},
	[]string{
		"kind",
	},
)

func init() {
	prometheus.MustRegister(itemCount)
}

// observe records collection sizes once.
func observe(collections []resource.Collection, logger *logrus.Entry) {
	for _, c := range collections {
		count, err := c.Count()
		if err != nil {
			logger.WithError(err).WithField("kind", c.Kind().Name).Warn("Could not count items")
			continue
		}
		itemCount.With(prometheus.Labels{"kind": c.Kind().Name}).Set(float64(count))
	}
}

// observeEvery records collection sizes until done is closed.
func observeEvery(clk clock.Clock, interval time.Duration, collections []resource.Collection, logger *logrus.Entry, done <-chan struct{}) {
	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		observe(collections, logger)
		select {
		case <-ticker.C:
		case <-done:
			return
		}
	}
}
