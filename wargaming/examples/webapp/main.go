// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/rguedes/wgauth/session"
	"github.com/rguedes/wgauth/wargaming"
	"github.com/rguedes/wgauth/wargaming/callback"
)

// List of configuration environment variables. They may also be set in a
// .env file in the working directory.
const (
	applicationID = "WG_APPLICATION_ID"
	configFile    = "WG_CONFIG_FILE"
	mode          = "WG_MODE"
	region        = "WG_REGION"
	port          = "WG_PORT"
	redisURL      = "WG_REDIS_URL"
	logLevel      = "WG_LOG_LEVEL"
)

func envConfig() (map[string]string, error) {
	const op = "envConfig"
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: unable to read .env: %w", op, err)
	}
	env := map[string]string{
		applicationID: os.Getenv(applicationID),
		configFile:    os.Getenv(configFile),
		mode:          os.Getenv(mode),
		region:        os.Getenv(region),
		port:          os.Getenv(port),
		redisURL:      os.Getenv(redisURL),
		logLevel:      os.Getenv(logLevel),
	}
	if env[applicationID] == "" && env[configFile] == "" {
		return nil, fmt.Errorf("%s: either %s or %s must be set", op, applicationID, configFile)
	}
	if env[port] == "" {
		env[port] = "8080"
	}
	return env, nil
}

func newConfig(env map[string]string, logger hclog.Logger) (*wargaming.Config, error) {
	redirectURL := fmt.Sprintf("http://localhost:%s/callback", env[port])
	opts := []wargaming.Option{wargaming.WithLogger(logger)}
	if env[mode] != "" {
		opts = append(opts, wargaming.WithMode(wargaming.Mode(env[mode])))
	}
	if env[region] != "" {
		opts = append(opts, wargaming.WithRegion(wargaming.Region(env[region])))
	}
	if env[configFile] != "" {
		return wargaming.LoadConfigFile(env[configFile], opts...)
	}
	return wargaming.NewConfig(env[applicationID], redirectURL, opts...)
}

func newSessionBackend(ctx context.Context, env map[string]string) (session.Backend, error) {
	if env[redisURL] == "" {
		return session.NewMemoryBackend(), nil
	}
	client, err := session.DialRedis(ctx, env[redisURL])
	if err != nil {
		return nil, err
	}
	return session.NewRedisBackend(client, session.DefaultRedisPrefix)
}

func main() {
	env, err := envConfig()
	if err != nil {
		fmt.Fprint(os.Stderr, err)
		return
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "webapp",
		Level: hclog.LevelFromString(env[logLevel]),
	})

	// handle ctrl-c
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt)
	defer signal.Stop(sigintCh)

	pc, err := newConfig(env, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return
	}
	p, err := wargaming.NewProvider(pc)
	if err != nil {
		logger.Error("unable to create provider", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	backend, err := newSessionBackend(ctx, env)
	cancel()
	if err != nil {
		logger.Error("unable to create session backend", "error", err)
		return
	}
	sessions, err := session.NewManager(backend, session.WithLogger(logger), session.WithSecure(pc.HTTPS))
	if err != nil {
		logger.Error("unable to create session manager", "error", err)
		return
	}

	mux, err := newMux(p, sessions, logger)
	if err != nil {
		logger.Error("unable to create routes", "error", err)
		return
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%s", env[port]))
	if err != nil {
		logger.Error("unable to listen", "error", err)
		return
	}
	defer listener.Close()

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	srvCh := make(chan error)
	// Start local server
	go func() {
		logger.Info("listening", "addr", listener.Addr().String(), "mode", pc.Mode)
		err := srv.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			srvCh <- err
		}
	}()

	select {
	case err := <-srvCh:
		logger.Error("server closed", "error", err)
	case <-sigintCh:
		logger.Info("interrupted")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func newMux(p *wargaming.Provider, sessions *session.Manager, logger hclog.Logger) (*http.ServeMux, error) {
	loader := func(w http.ResponseWriter, req *http.Request) (wargaming.SessionStore, error) {
		return sessions.Load(w, req)
	}
	errorFn := ErrorHandler(logger)

	login, err := callback.Login(p, loader, errorFn)
	if err != nil {
		return nil, err
	}
	cb, err := callback.Callback(p, loader, func(_ *wargaming.Auth, w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/profile", http.StatusFound)
	}, errorFn)
	if err != nil {
		return nil, err
	}
	logout, err := callback.Logout(p, loader, LogoutSuccessHandler(sessions, logger), errorFn)
	if err != nil {
		return nil, err
	}
	profile, err := callback.RequireLogin(p, loader, errorFn, ProfileHandler(p, logger))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", login)
	mux.HandleFunc("/callback", cb)
	mux.HandleFunc("/logout", logout)
	mux.Handle("/profile", profile)
	return mux, nil
}
