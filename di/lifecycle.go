package di

import (
	"context"

	"github.com/KOMKZ/go-yogan-classevent/database"
	"github.com/KOMKZ/go-yogan-classevent/event"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/samber/do/v2"
)

// StartCoreComponents builds the event registry and the database
// connections so configuration errors surface at startup
func StartCoreComponents(ctx context.Context, injector *do.RootScope, log *logger.CtxZapLogger) error {
	c, err := do.Invoke[*event.Component](injector)
	if err != nil {
		return err
	}
	if c.IsEnabled() {
		log.DebugCtx(ctx, "event registry ready")
	}

	mgr, err := do.Invoke[*database.Manager](injector)
	if err != nil {
		return err
	}
	if mgr != nil {
		log.DebugCtx(ctx, "database ready")
	}
	return nil
}
