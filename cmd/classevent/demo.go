package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/KOMKZ/go-yogan-classevent/database"
	"github.com/KOMKZ/go-yogan-classevent/event"
	"github.com/KOMKZ/go-yogan-classevent/flagx"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/KOMKZ/go-yogan-classevent/telemetry"
	"github.com/KOMKZ/go-yogan-classevent/typesys"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type demoOptions struct {
	Users  []string `flag:"user,u" usage:"names of the users to save" default:"ada,grace"`
	Trace  bool     `flag:"trace" usage:"export spans and metrics to stdout"`
	Pretty bool     `flag:"pretty" usage:"pretty-print exported telemetry"`
}

type demoUser struct {
	ID      uint `gorm:"primaryKey"`
	Name    string
	Audited bool
}

func (demoUser) TableName() string { return "demo_users" }

func newDemoCmd() *cobra.Command {
	var opts demoOptions
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Save users through gorm and print the class-level audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	if err := flagx.BindFlags(cmd, &opts); err != nil {
		panic(err)
	}
	return cmd
}

// auditTrail collects lines from handlers; hooks may run on gorm's goroutine
type auditTrail struct {
	mu    sync.Mutex
	lines []string
}

func (a *auditTrail) add(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, fmt.Sprintf(format, args...))
}

func (a *auditTrail) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.lines...)
}

func runDemo(ctx context.Context, out io.Writer, opts demoOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.GetLogger("classevent")

	tcfg := telemetry.DefaultConfig()
	if opts.Trace {
		tcfg.Enabled = true
		tcfg.ServiceName = "classevent-demo"
		tcfg.Exporter = telemetry.ExporterStdout
		tcfg.PrettyPrint = opts.Pretty
	}
	tm := telemetry.NewManager(tcfg, telemetry.WithWriter(out), telemetry.WithLogger(log))
	if err := tm.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := tm.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.WarnCtx(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}()

	ns := typesys.NewNamespace()
	model := ns.MustDefine("Model", nil)
	user := ns.MustDefine("User", model)
	if err := ns.Bind(user, demoUser{}); err != nil {
		return err
	}

	metrics := event.NewMetrics(event.MetricsConfig{Enabled: opts.Trace})
	if err := tm.Metrics().Register(metrics); err != nil {
		return err
	}
	registry := event.NewRegistry(
		event.WithResolver(ns),
		event.WithTypeOf(ns.TypeOf),
		event.WithLogger(log),
		event.WithMetrics(metrics),
		event.WithTracer(tm.Tracer("classevent")),
	)
	defer registry.Close()

	trail := &auditTrail{}
	model.Define("audit", func(ctx context.Context, receiver any, e *event.Event) error {
		u, ok := e.Sender.(*demoUser)
		if !ok {
			return nil
		}
		u.Audited = true
		class, _ := ns.ClassOf(u)
		trail.add("%s %s %q (data: %v)", e.Name, class, u.Name, e.Data)
		return nil
	})
	if err := registry.Attach(database.EventBeforeSave, model, "audit",
		event.WithData(map[string]any{"source": "demo"})); err != nil {
		return err
	}
	if err := registry.Attach(database.EventAfterInsert, user, func(ctx context.Context, receiver any, e *event.Event) error {
		u := e.Sender.(*demoUser)
		trail.add("%s %s #%d", e.Name, user, u.ID)
		return nil
	}); err != nil {
		return err
	}

	mgr, err := database.NewManager(map[string]database.Config{
		"main": {
			Driver:       database.DriverSQLite,
			DSN:          ":memory:",
			MaxOpenConns: 1,
			Trace:        opts.Trace,
		},
	},
		database.WithLogger(log),
		database.WithEventHooks(registry, ns.TypeOf),
		database.WithTracerProvider(tm.TracerProvider()),
	)
	if err != nil {
		return err
	}
	defer mgr.Close()

	db := mgr.DB("main").WithContext(ctx)
	if err := db.AutoMigrate(&demoUser{}); err != nil {
		return err
	}
	for _, name := range opts.Users {
		if err := db.Create(&demoUser{Name: name}).Error; err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}

	var audited int64
	if err := db.Model(&demoUser{}).Where("audited = ?", true).Count(&audited).Error; err != nil {
		return err
	}

	fmt.Fprintln(out, "audit trail:")
	for _, line := range trail.snapshot() {
		fmt.Fprintln(out, "  "+line)
	}
	fmt.Fprintf(out, "%d of %d user(s) audited\n", audited, len(opts.Users))
	return nil
}
