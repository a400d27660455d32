package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/adapters/gemini"
	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/adapters/osfilesystem"
	"github.com/user/storyreel/pkg/adapters/sqlitestore"
	"github.com/user/storyreel/pkg/config"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/store"
	"github.com/user/storyreel/pkg/storyboard"
	"github.com/user/storyreel/pkg/studio"
)

// env is the per-command composition root.
type env struct {
	cfg   config.Config
	log   ports.Logger
	fs    *osfilesystem.FileSystem
	kv    *sqlitestore.Store
	state *studio.State

	envKey string
}

func (e *env) envAPIKeySet() bool { return e.envKey != "" }

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Defaults(), nil
	}
	return config.LoadFromFile(osfilesystem.ExpandHome(path))
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log := logger.New(ports.ParseLogLevel(c.String("log-level")), c.Bool("quiet"))

	dbPath := cfg.Paths.Database
	if c.String("db") != "" {
		dbPath = c.String("db")
	}
	kv, err := sqlitestore.Open(c.Context, osfilesystem.ExpandHome(dbPath))
	if err != nil {
		return nil, err
	}

	mediaDir := cfg.Paths.MediaDir
	if mediaDir != "" {
		mediaDir = osfilesystem.ExpandHome(mediaDir)
	}

	envKey := strings.TrimSpace(os.Getenv(store.APIKeyKey))
	fs := osfilesystem.New()
	state := studio.New(studio.Options{
		KV: kv,
		FS: fs,
		Gallery: store.GalleryOptions{
			InlineCeiling: cfg.Gallery.InlineCeiling,
			MediaDir:      mediaDir,
		},
		NewClient: func(apiKey string) ports.GenerativeClient {
			return gemini.New(gemini.Config{
				APIKey:  apiKey,
				BaseURL: cfg.API.BaseURL,
				Timeout: time.Duration(cfg.API.TimeoutSec) * time.Second,
			}, log)
		},
		Logger:    log,
		EnvAPIKey: envKey,
	}).WithHTTPClient(&http.Client{Timeout: cfg.LoadTimeout()})
	if err := state.Load(c.Context); err != nil {
		kv.Close()
		return nil, err
	}

	return &env{cfg: cfg, log: log, fs: fs, kv: kv, state: state, envKey: envKey}, nil
}

// withEnv opens the environment, runs fn and closes it. When save is set the
// state is persisted after fn succeeds.
func withEnv(save bool, fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.kv.Close()

		if err := fn(c, e); err != nil {
			return err
		}
		if save {
			return e.state.Save(context.WithoutCancel(c.Context))
		}
		return nil
	}
}

// resolveScene accepts a 1-based position, a full scene ID or a unique ID prefix.
func resolveScene(scenes []storyboard.Scene, arg string) (storyboard.Scene, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(scenes) {
			return storyboard.Scene{}, fmt.Errorf("%w: position %d of %d", storyboard.ErrSceneNotFound, n, len(scenes))
		}
		return scenes[n-1], nil
	}

	var match []storyboard.Scene
	for _, s := range scenes {
		if s.ID == arg {
			return s, nil
		}
		if strings.HasPrefix(s.ID, arg) {
			match = append(match, s)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return storyboard.Scene{}, fmt.Errorf("%w: %s", storyboard.ErrSceneNotFound, arg)
	default:
		return storyboard.Scene{}, fmt.Errorf("ambiguous scene %q matches %d scenes", arg, len(match))
	}
}

// resolveItem accepts a 1-based position, a full item ID or a unique ID prefix.
func resolveItem(items []storyboard.GalleryItem, arg string) (storyboard.GalleryItem, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(items) {
			return storyboard.GalleryItem{}, fmt.Errorf("%w: position %d of %d", storyboard.ErrItemNotFound, n, len(items))
		}
		return items[n-1], nil
	}

	var match []storyboard.GalleryItem
	for _, it := range items {
		if it.ID == arg {
			return it, nil
		}
		if strings.HasPrefix(it.ID, arg) {
			match = append(match, it)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return storyboard.GalleryItem{}, fmt.Errorf("%w: %s", storyboard.ErrItemNotFound, arg)
	default:
		return storyboard.GalleryItem{}, fmt.Errorf("ambiguous item %q matches %d items", arg, len(match))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
