package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"irondoc/client/internal/apiclient"
	"irondoc/client/internal/app"
	"irondoc/client/internal/avatar"
	"irondoc/client/internal/config"
	"irondoc/client/internal/export"
	"irondoc/client/internal/kv"
	"irondoc/client/internal/logging"
	"irondoc/client/internal/model"
	"irondoc/client/internal/search"
	"irondoc/client/internal/session"
)

// deps is everything a command needs, built once per invocation.
type deps struct {
	cfg     config.Config
	logger  *zap.Logger
	stdout  io.Writer
	stderr  io.Writer
	session *session.Store
	api     *apiclient.Client
	auth    *app.Authenticator
	search  *search.Service

	closers []func()
}

func newDeps(cfg config.Config, stdout, stderr io.Writer) (*deps, error) {
	logger, err := logging.NewWithWriter(cfg.LogLevel, stderr)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	d.closers = append(d.closers, func() { _ = logger.Sync() })

	store, closeStore, err := kv.Open(kv.Options{
		Backend:  cfg.StateBackend,
		Path:     cfg.StatePath,
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.StatePrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	d.closers = append(d.closers, func() {
		if err := closeStore(); err != nil {
			logger.Warn("close state", zap.Error(err))
		}
	})
	logger.Debug("state opened", zap.String("backend", cfg.StateBackend))

	d.session = session.New(store)
	d.api = apiclient.New(cfg.APIURL, d.session, apiclient.WithLogger(logger))
	d.auth = app.NewAuthenticator(d.api, d.session, logger)

	var meili *search.Meili
	if cfg.SearchEnabled() {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		d.closers = append(d.closers, meili.Close)
	}
	d.search = search.NewService(meili, logger)
	d.closers = append(d.closers, d.search.Wait)
	return d, nil
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// currentUser returns the signed-in identity, rejecting missing or expired
// sessions.
func (d *deps) currentUser(ctx context.Context) (model.User, error) {
	if !d.session.IsAuthenticated(ctx) {
		return model.User{}, app.ErrNotAuthenticated
	}
	return d.auth.Current(ctx)
}

// workspace returns a workspace for the signed-in user with the document
// list loaded.
func (d *deps) workspace(ctx context.Context) (*app.Workspace, error) {
	user, err := d.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	opts := []app.WorkspaceOption{app.WithLogger(d.logger), app.WithSearch(d.search)}
	if d.cfg.ConfirmRestore {
		opts = append(opts, app.WithRestoreConfirmation())
	}
	w := app.NewWorkspace(d.api, user, opts...)
	w.LoadDocuments(ctx)
	return w, nil
}

func (d *deps) avatars(ctx context.Context) (*avatar.Service, error) {
	if !d.cfg.AvatarStorageEnabled() {
		return avatar.NewService(nil, d.logger), nil
	}
	s3, err := avatar.NewS3(avatar.S3Options{
		Endpoint:  d.cfg.AvatarEndpoint,
		AccessKey: d.cfg.AvatarAccessKey,
		SecretKey: d.cfg.AvatarSecretKey,
		Bucket:    d.cfg.AvatarBucket,
		UseSSL:    d.cfg.AvatarUseSSL,
		PublicURL: d.cfg.AvatarPublicURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return avatar.NewService(s3, d.logger), nil
}

func (d *deps) exporter() *export.Service {
	return export.NewService(d.logger)
}
