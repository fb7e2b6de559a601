package handler

import (
	"cowork/config"
	"cowork/di"
	"cowork/shared/logger"
	"net/http"
	"sync"
)

var server = sync.OnceValue(func() http.Handler {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)
	logger.SetOutput(cfg)

	return di.InitializeService()
})

// Handler serves the API from a serverless function. The dependency graph is
// built on the first invocation and reused by warm instances.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	server().ServeHTTP(w, r)
}
