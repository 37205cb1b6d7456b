// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restserver"
)

// newHandler builds the full HTTP stack: panic recovery, optional
// request logging, the catalog REST API, and /metrics.
func newHandler(c catalog.Catalog, log logrus.FieldLogger, gatherer prometheus.Gatherer, logRequests bool) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	restserver.PopulateRouter(r, c, log)

	recovery := negroni.NewRecovery()
	recovery.Logger = log
	recovery.PrintStack = false
	n := negroni.New(recovery)
	if logRequests {
		n.Use(requestLogger(log))
	}
	n.UseHandler(r)
	return n
}

// requestLogger writes one logrus entry per request.
func requestLogger(log logrus.FieldLogger) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		fields := logrus.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"remote":   req.RemoteAddr,
			"duration": time.Since(start),
		}
		if res, ok := rw.(negroni.ResponseWriter); ok {
			fields["status"] = res.Status()
		}
		log.WithFields(fields).Info("request")
	}
}
