package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/adapter/connectrpc"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
)

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// RequestLogger logs one entry per course API call. Client mistakes log at warn,
// everything else that failed at error.
func RequestLogger(logger logrus.FieldLogger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			entry := logger.WithFields(requestFields(req, time.Since(start)))
			if err == nil {
				entry.Info("request completed")
				return resp, nil
			}

			code := connect.CodeOf(err)
			entry = entry.WithError(err).WithField("code", code.String())
			if clientFault(code) {
				entry.Warn("request rejected")
			} else {
				entry.Error("request failed")
			}
			return resp, err
		}
	}
}

func requestFields(req connect.AnyRequest, elapsed time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"procedure": req.Spec().Procedure,
		"duration":  elapsed.String(),
	}
	header := req.Header()
	setField(fields, "user_id", header.Get(connectrpc.UserIDHeader))
	setField(fields, "protocol", req.Peer().Protocol)
	setField(fields, "peer_addr", req.Peer().Addr)
	setField(fields, "client_ip", forwardedFor(header))
	setField(fields, "request_id", header.Get("X-Request-Id"))
	return fields
}

func clientFault(code connect.Code) bool {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeNotFound,
		connect.CodeAlreadyExists, connect.CodeUnauthenticated:
		return true
	}
	return false
}

func setField(fields logrus.Fields, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// forwardedFor returns the originating client of a proxied request.
func forwardedFor(header http.Header) string {
	first, _, _ := strings.Cut(header.Get("X-Forwarded-For"), ",")
	return strings.TrimSpace(first)
}
