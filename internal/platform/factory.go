package platform

import (
	"context"

	"github.com/aretw0/folio/pkg/core"
)

// New opens the store, loads the collection and returns a ready Service.
//
//	svc, err := folio.New("./.folio", folio.WithAdapter("sqlite"))
//
// A corrupt collection is reported as core.ErrCorruptState; see Reset.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store, err := initStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	repo := newRepository(store, o)
	if err := repo.Load(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}

	return core.NewService(core.ServiceConfig{
		Repository:    repo,
		Scheduler:     o.scheduler,
		AutosaveDelay: o.getDuration("autosave"),
		Render:        o.render,
		Logger:        o.logger,
	}), nil
}
