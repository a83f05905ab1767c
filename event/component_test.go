package event

import (
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-classevent/config"
	"github.com/KOMKZ/go-yogan-classevent/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, values map[string]any) *config.Loader {
	loader := config.NewLoader()
	loader.AddSource(config.NewMapSource("test", 10, values))
	require.NoError(t, loader.Load())
	return loader
}

// auditTypes adds an Auditor class with a static "record" method and an
// "audit" method on Model
func auditTypes(rec *recorder) *hierarchy {
	types := newHierarchy()
	auditor := newTestType("Auditor", nil)
	auditor.methods["record"] = func(ctx context.Context, receiver any, e *Event) error {
		rec.add("auditor:" + e.Data.(map[string]any)["channel"].(string))
		return nil
	}
	types.model.methods["audit"] = rec.handler("model:audit")
	types.resolver["Auditor"] = auditor
	return types
}

func TestComponent_Metadata(t *testing.T) {
	c := NewComponent(nil)
	assert.Equal(t, "event", c.Name())
	assert.Contains(t, c.DependsOn(), "config")
	assert.Contains(t, c.DependsOn(), "logger")
	assert.False(t, c.IsEnabled())
	assert.Nil(t, c.Registry())
}

func TestComponent_InitAttachesBindings(t *testing.T) {
	rec := &recorder{}
	types := auditTypes(rec)
	loader := newTestLoader(t, map[string]any{
		"event": map[string]any{
			"enabled":   true,
			"pool_size": 4,
			"metrics":   true,
			"bindings": []any{
				map[string]any{"event": "beforeSave", "type": "Model", "handler": "audit"},
				map[string]any{
					"event":   "afterInsert",
					"type":    "User",
					"handler": []any{"Auditor", "record"},
					"prepend": true,
					"data":    map[string]any{"channel": "audit"},
				},
			},
		},
	})

	c := NewComponent(types.resolver)
	require.NoError(t, c.Init(context.Background(), loader))
	require.True(t, c.IsEnabled())
	assert.Equal(t, 4, c.Config().PoolSize)
	require.NotNil(t, c.Metrics())
	assert.True(t, c.Metrics().IsRegistered())

	r := c.Registry()
	assert.True(t, r.HasHandlers("beforeSave", types.admin))
	assert.True(t, r.HasHandlers("afterInsert", types.user))
	assert.False(t, r.HasHandlers("afterInsert", types.model))

	user := &testObject{class: types.user}
	require.NoError(t, r.Trigger(context.Background(), user, "beforeSave", nil))
	require.NoError(t, r.Trigger(context.Background(), user, "afterInsert", nil))
	assert.Equal(t, []string{"model:audit", "auditor:audit"}, rec.list())

	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
}

func TestComponent_Defaults(t *testing.T) {
	c := NewComponent(nil)
	require.NoError(t, c.Init(context.Background(), newTestLoader(t, map[string]any{})))
	assert.True(t, c.IsEnabled())
	assert.Equal(t, DefaultConfig().PoolSize, c.Config().PoolSize)
	assert.Nil(t, c.Metrics())
}

func TestComponent_Disabled(t *testing.T) {
	c := NewComponent(nil)
	loader := newTestLoader(t, map[string]any{"event": map[string]any{"enabled": false}})
	require.NoError(t, c.Init(context.Background(), loader))
	assert.False(t, c.IsEnabled())
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.Stop(context.Background()))
}

func TestComponent_LogDispatch(t *testing.T) {
	types := newHierarchy()
	c := NewComponent(types.resolver)
	loader := newTestLoader(t, map[string]any{"event": map[string]any{"log_dispatch": true}})
	require.NoError(t, c.Init(context.Background(), loader))
	defer c.Stop(context.Background())

	assert.True(t, c.Config().LogDispatch)
	require.Len(t, c.Registry().interceptorChain(), 1)

	rec := &recorder{}
	require.NoError(t, c.Registry().Attach("ping", types.model, rec.handler("model")))
	require.NoError(t, c.Registry().Trigger(context.Background(), types.user, "ping", nil))
	assert.Equal(t, []string{"model"}, rec.list())
}

func TestComponent_InvalidConfig(t *testing.T) {
	cases := map[string]map[string]any{
		"negative pool": {"pool_size": -1},
		"binding without handler": {"bindings": []any{
			map[string]any{"event": "beforeSave", "type": "Model"},
		}},
	}
	for name, section := range cases {
		t.Run(name, func(t *testing.T) {
			c := NewComponent(nil)
			err := c.Init(context.Background(), newTestLoader(t, map[string]any{"event": section}))
			assert.ErrorIs(t, err, validator.ErrValidation)
		})
	}
}

func TestComponent_UnknownBindingType(t *testing.T) {
	types := newHierarchy()
	loader := newTestLoader(t, map[string]any{"event": map[string]any{
		"bindings": []any{
			map[string]any{"event": "beforeSave", "type": "Ghost", "handler": "audit"},
		},
	}})

	err := NewComponent(types.resolver).Init(context.Background(), loader)
	assert.ErrorIs(t, err, ErrUnknownType)

	err = NewComponent(nil).Init(context.Background(), loader)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestComponent_MalformedBindingHandler(t *testing.T) {
	types := newHierarchy()
	loader := newTestLoader(t, map[string]any{"event": map[string]any{
		"bindings": []any{
			map[string]any{"event": "beforeSave", "type": "Model", "handler": "missing"},
		},
	}})

	err := NewComponent(types.resolver).Init(context.Background(), loader)
	assert.ErrorIs(t, err, ErrMalformedHandler)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Bindings = []BindingConfig{{Event: "beforeSave", Type: "Model", Handler: "audit"}}
	assert.NoError(t, cfg.Validate())

	cfg.Bindings = append(cfg.Bindings, BindingConfig{Type: "Model", Handler: "audit"})
	assert.Error(t, cfg.Validate())
}
