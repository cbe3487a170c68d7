/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

var drawPage = template.Must(template.ParseFS(assets, "assets/draw/index.html"))

type drawPageData struct {
	Favicon template.HTML
	Prefix  string
	Path    string
	Version string
}

func serveDrawPage(cfg *Config, path string, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var buf bytes.Buffer

		err := drawPage.Execute(&buf, drawPageData{
			Favicon: template.HTML(getFavicon()),
			Prefix:  cfg.prefix,
			Path:    cfg.prefix + path,
			Version: releaseVersion,
		})
		if err != nil {
			errs <- err

			http.Error(w, "page rendering failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		securityHeaders(cfg, w)

		written, err := w.Write(buf.Bytes())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Draw page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
