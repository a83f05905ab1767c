package database

import (
	"reflect"

	"github.com/KOMKZ/go-yogan-classevent/event"
	"gorm.io/gorm"
)

// Lifecycle event names fired by HookPlugin
const (
	EventBeforeSave   = "beforeSave"
	EventAfterSave    = "afterSave"
	EventBeforeInsert = "beforeInsert"
	EventAfterInsert  = "afterInsert"
	EventBeforeUpdate = "beforeUpdate"
	EventAfterUpdate  = "afterUpdate"
	EventBeforeDelete = "beforeDelete"
	EventAfterDelete  = "afterDelete"
	EventAfterFind    = "afterFind"
)

// ParamDB is the Event.Params key holding the statement's *gorm.DB
const ParamDB = "db"

// HookPlugin triggers class-level events for every model gorm creates,
// updates, deletes or loads.
//
// The model pointer is the event sender; the trigger runs on the model's
// class as returned by typeOf. Models with no class are skipped. A handler
// error is added to the statement, which aborts (and rolls back) the write.
//
// Events named by WithAsyncEvents go through the registry's worker pool
// instead. They cannot abort the statement and carry no ParamDB.
type HookPlugin struct {
	registry *event.Registry
	typeOf   event.TypeOfFunc
	async    map[string]bool
}

// HookOption configures a HookPlugin
type HookOption func(*HookPlugin)

// WithAsyncEvents dispatches the named lifecycle events asynchronously
func WithAsyncEvents(names ...string) HookOption {
	return func(p *HookPlugin) {
		for _, name := range names {
			p.async[name] = true
		}
	}
}

// NewHookPlugin creates the plugin
func NewHookPlugin(registry *event.Registry, typeOf event.TypeOfFunc, opts ...HookOption) *HookPlugin {
	p := &HookPlugin{registry: registry, typeOf: typeOf, async: make(map[string]bool)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements gorm.Plugin
func (p *HookPlugin) Name() string {
	return "classevent"
}

// Initialize registers the lifecycle callbacks.
// Every write hook runs inside the statement's transaction, before
// gorm:commit_or_rollback_transaction, so an after-hook error still rolls back.
func (p *HookPlugin) Initialize(db *gorm.DB) error {
	create := db.Callback().Create()
	if err := create.After("gorm:begin_transaction").Before("gorm:create").
		Register("classevent:before_create", p.hook(EventBeforeSave, EventBeforeInsert)); err != nil {
		return err
	}
	if err := create.After("gorm:after_create").Before("gorm:commit_or_rollback_transaction").
		Register("classevent:after_create", p.hook(EventAfterInsert, EventAfterSave)); err != nil {
		return err
	}

	update := db.Callback().Update()
	if err := update.After("gorm:before_update").Before("gorm:update").
		Register("classevent:before_update", p.hook(EventBeforeSave, EventBeforeUpdate)); err != nil {
		return err
	}
	if err := update.After("gorm:after_update").Before("gorm:commit_or_rollback_transaction").
		Register("classevent:after_update", p.hook(EventAfterUpdate, EventAfterSave)); err != nil {
		return err
	}

	del := db.Callback().Delete()
	if err := del.After("gorm:begin_transaction").Before("gorm:delete").
		Register("classevent:before_delete", p.hook(EventBeforeDelete)); err != nil {
		return err
	}
	if err := del.After("gorm:after_delete").Before("gorm:commit_or_rollback_transaction").
		Register("classevent:after_delete", p.hook(EventAfterDelete)); err != nil {
		return err
	}

	return db.Callback().Query().After("gorm:query").Register("classevent:after_query",
		p.hook(EventAfterFind))
}

func (p *HookPlugin) hook(names ...string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.SkipHooks || p.registry == nil || p.typeOf == nil {
			return
		}
		eachModel(db.Statement.ReflectValue, func(model any) bool {
			if err := p.fire(db, model, names); err != nil {
				_ = db.AddError(err)
				return false
			}
			return true
		})
	}
}

func (p *HookPlugin) fire(db *gorm.DB, model any, names []string) error {
	t, ok := p.typeOf(model)
	if !ok {
		return nil
	}
	for _, name := range names {
		if p.async[name] {
			e := event.NewEvent(nil)
			e.Sender = model
			p.registry.TriggerAsync(db.Statement.Context, t, name, e)
			continue
		}
		e := event.NewEvent(map[string]any{ParamDB: db})
		e.Sender = model
		if err := p.registry.Trigger(db.Statement.Context, t, name, e); err != nil {
			return err
		}
	}
	return nil
}

// eachModel calls fn with a pointer to every model in rv until fn returns false
func eachModel(rv reflect.Value, fn func(model any) bool) {
	if !rv.IsValid() {
		return
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !fn(modelOf(rv.Index(i))) {
				return
			}
		}
	case reflect.Struct:
		fn(modelOf(rv))
	}
}

func modelOf(v reflect.Value) any {
	if v.Kind() != reflect.Pointer && v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}
