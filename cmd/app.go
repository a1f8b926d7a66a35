package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/logger"
	"github.com/contextiq/contextiq-cli/internal/session"
	"github.com/contextiq/contextiq-cli/internal/utils"
	"github.com/contextiq/contextiq-cli/internal/workspace"
	"go.uber.org/zap"
)

const sessionFileName = "session.json"

// app is the wired client: one gateway, one session store, one controller.
type app struct {
	log    *zap.Logger
	client *api.Client
	store  *session.Store
	ws     *workspace.Controller
}

func openApp() (*app, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(c.StateDir); err != nil {
		return nil, err
	}
	log, err := logger.New(c.LogFile, c.LogLevel)
	if err != nil {
		return nil, err
	}
	var storage session.Storage
	fs, err := session.OpenFileStorage(filepath.Join(c.StateDir, sessionFileName))
	if err != nil {
		log.Warn("session file unreadable, using memory storage", zap.Error(err))
		printWarning(os.Stderr, "cannot read the saved session (%v); this run will not remember sign-in", err)
		storage = session.NewMemoryStorage()
	} else {
		storage = fs
	}

	client := api.NewClient(c.APIURL, c.AuthURL, time.Duration(c.HTTPTimeoutSec)*time.Second, nil, log)
	store := session.Open(storage, client, log)
	client.SetTokenSource(store)

	log.Debug("client started",
		zap.String("api_url", c.APIURL),
		zap.String("auth_url", c.AuthURL),
		zap.Bool("signed_in", store.Current() != nil))

	return &app{
		log:    log,
		client: client,
		store:  store,
		ws:     workspace.New(client, store, workspace.WithLogger(log)),
	}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
}
