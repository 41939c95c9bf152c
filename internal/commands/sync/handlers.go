// Package synccmd exposes translation sync operations as go-command messages
// so hosts can dispatch them from queues, cron schedules, or CLIs.
package synccmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/commands"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/schema"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// ErrBulkServiceRequired indicates the handler was built without a bulk service.
var ErrBulkServiceRequired = errors.New("synccmd: bulk service is required")

// NewBulkSyncHandler builds a command handler that drives a bulk run and logs
// its event stream. Collections default to every registered collection.
func NewBulkSyncHandler(service *bulk.Service, registry *schema.Registry, logger interfaces.Logger, opts ...commands.HandlerOption[BulkSyncCommand]) *commands.Handler[BulkSyncCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}

	fn := func(ctx context.Context, cmd BulkSyncCommand) error {
		if service == nil {
			return ErrBulkServiceRequired
		}
		collections := cmd.Collections
		if len(collections) == 0 && registry != nil {
			collections = registry.Collections()
		}
		return service.Run(ctx, collections, func(event bulk.Event) error {
			logEvent(logger, event)
			return nil
		})
	}

	defaults := []commands.HandlerOption[BulkSyncCommand]{
		// Bulk runs translate whole collections; the default timeout is too tight.
		commands.WithTimeout[BulkSyncCommand](0),
		commands.WithLogger[BulkSyncCommand](logger),
		commands.WithOperation[BulkSyncCommand]("bulk_sync"),
	}
	return commands.NewHandler(fn, append(defaults, opts...)...)
}

func logEvent(logger interfaces.Logger, event bulk.Event) {
	switch event.Type {
	case bulk.EventSummary:
		if event.Summary != nil {
			logger.Info("bulk sync finished",
				"processed", event.Summary.Processed,
				"skipped", event.Summary.Skipped,
				"failed", event.Summary.Failed,
			)
		}
	case "error":
		logger.Error("bulk sync error",
			"collection", event.Collection,
			"document", event.Document,
			"locale", event.Locale,
			"message", event.Message,
		)
	default:
		logger.Debug("bulk sync event",
			"type", event.Type,
			"collection", event.Collection,
			"document", event.Document,
			"locale", event.Locale,
		)
	}
}
