package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"mixtape/internal/app/history"
	"mixtape/internal/app/likedsongs"
	"mixtape/internal/app/playlists"
	"mixtape/internal/httpapi"
	"mixtape/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, logger zerolog.Logger) http.Handler {
	playlistSvc := playlists.New(dataStore)
	likedSvc := likedsongs.New(dataStore)
	historySvc := history.New(dataStore)

	server := httpapi.New(playlistSvc, likedSvc, historySvc, []byte(cfg.JWTSecret), logger)
	return withCORS(cfg.AllowedOrigins, server.Routes())
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-User-Id")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
