//go:build js && wasm

// Command folio-wasm runs the engagement widget in the browser, keeping the
// visitor's record in local storage.
package main

import (
	"context"
	"os"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage/localstorage"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom/jsdom"
)

func main() {
	cfg := logging.DefaultLoggerConfig()
	cfg.JSONFormat = false
	cfg.Console = os.Stdout
	logger, err := logging.NewChanneledLogger(cfg)
	if err != nil {
		logger = logging.NewDiscardLogger()
	}

	doc := jsdom.New()
	root := doc.ByID(engagement.IDWidget)
	if root == nil {
		logger.Engagement().Info("No engagement widget on this page")
		return
	}

	var kv storage.KeyValue
	if area, err := localstorage.New(); err == nil {
		kv = area
	} else {
		// The widget still works for this page view; nothing persists.
		logger.Storage().Warn("Falling back to in-memory storage", "error", err.Error())
		kv = storage.NewMemoryArea(0)
	}

	loop := newEventLoop()
	workID := root.Attr("data-work-id")
	store := engagement.NewStore(kv, workID, logger)

	widget := engagement.New(engagement.Options{
		WorkID:    workID,
		Title:     root.Attr("data-title"),
		URL:       root.Attr("data-url"),
		Store:     store,
		Document:  doc,
		Elements:  engagement.LookupElements(doc),
		Platform:  browserPlatform{},
		Scheduler: jsScheduler{loop: loop},
		Logger:    logger,
	})

	ctx := context.Background()
	loop.Post(func() { widget.Init(ctx) })
	bind(ctx, loop, doc, widget, store.Key())

	logger.Engagement().Info("Engagement widget ready", "workId", workID)
	loop.Run()
}
