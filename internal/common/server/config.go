package server

import (
	"net/http"
	"time"

	"github.com/blogsphere/backend/internal/common/constants"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// DefaultServerConfig listens on port. The write timeout is stretched so a
// handler that uses its full requestTimeout can still write its response.
func DefaultServerConfig(port string, requestTimeout time.Duration) ServerConfig {
	writeTimeout := constants.ServerWriteTimeout
	if floor := requestTimeout + constants.ServerWriteGrace; writeTimeout < floor {
		writeTimeout = floor
	}
	return ServerConfig{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
		MaxHeaderBytes:    constants.ServerMaxHeaderBytes,
	}
}

func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
