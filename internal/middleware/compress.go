// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// gzipWriterPool pools gzip.Writer instances to reduce allocations.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// compressibleContentTypes lists content types that should be compressed.
var compressibleContentTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"text/javascript",
	"application/javascript",
	"application/json",
	"application/xml",
	"text/xml",
	"image/svg+xml",
}

// Compress is a middleware that gzip-compresses responses with compressible
// content types for clients that support it. Uploaded photos and other
// already compressed content pass through unchanged.
func Compress(minSize int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			sw := &selectiveWriter{
				ResponseWriter: w,
				minSize:        minSize,
			}

			next.ServeHTTP(sw, r)

			sw.Flush()
		})
	}
}

// selectiveWriter buffers responses and only compresses if appropriate.
type selectiveWriter struct {
	http.ResponseWriter
	minSize    int
	buffer     []byte
	statusCode int
}

func (sw *selectiveWriter) WriteHeader(statusCode int) {
	sw.statusCode = statusCode
}

func (sw *selectiveWriter) Write(b []byte) (int, error) {
	sw.buffer = append(sw.buffer, b...)
	return len(b), nil
}

func (sw *selectiveWriter) Flush() {
	if len(sw.buffer) == 0 {
		if sw.statusCode != 0 {
			sw.ResponseWriter.WriteHeader(sw.statusCode)
		}
		return
	}

	contentType := sw.Header().Get("Content-Type")
	shouldCompress := len(sw.buffer) >= sw.minSize && isCompressible(contentType)

	if shouldCompress {
		sw.Header().Set("Content-Encoding", "gzip")
		sw.Header().Set("Vary", "Accept-Encoding")
		sw.Header().Del("Content-Length")
	}

	if sw.statusCode != 0 {
		sw.ResponseWriter.WriteHeader(sw.statusCode)
	}

	if shouldCompress {
		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(sw.ResponseWriter)
		_, _ = gz.Write(sw.buffer)
		_ = gz.Close()
		gzipWriterPool.Put(gz)
	} else {
		_, _ = sw.ResponseWriter.Write(sw.buffer)
	}
}

// isCompressible checks if the content type should be compressed.
func isCompressible(contentType string) bool {
	if contentType == "" {
		return false
	}

	// Strip parameters like charset.
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	for _, ct := range compressibleContentTypes {
		if strings.EqualFold(contentType, ct) {
			return true
		}
	}

	if strings.HasPrefix(strings.ToLower(contentType), "text/") {
		return true
	}

	return false
}
