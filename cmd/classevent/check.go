package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/KOMKZ/go-yogan-classevent/config"
	"github.com/KOMKZ/go-yogan-classevent/event"
	"github.com/KOMKZ/go-yogan-classevent/health"
	"github.com/KOMKZ/go-yogan-classevent/typesys"
	"github.com/KOMKZ/go-yogan-classevent/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
)

// typeDecl is one entry of the "types" section. Declared methods print the
// event they receive.
type typeDecl struct {
	Name    string   `mapstructure:"name"`
	Parent  string   `mapstructure:"parent"`
	Methods []string `mapstructure:"methods"`
}

func (d typeDecl) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Methods, validation.Each(validation.Required)),
	)
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the event configuration and list the attached handlers",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.NewLoaderBuilder().
				WithConfigPath(root.Config).
				WithEnvPrefix(root.EnvPrefix).
				Build()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), loader)
		},
	}
}

func runCheck(ctx context.Context, out io.Writer, loader *config.Loader) error {
	var decls []typeDecl
	if err := loader.Unmarshal("types", &decls); err != nil {
		return fmt.Errorf("read types: %w", err)
	}
	ns, err := declareTypes(out, decls)
	if err != nil {
		return err
	}

	comp := event.NewComponent(ns, event.WithTypeOf(ns.TypeOf))
	if err := comp.Init(ctx, loader); err != nil {
		return err
	}
	defer comp.Stop(ctx)

	if !comp.IsEnabled() {
		fmt.Fprintln(out, "event component disabled")
		return nil
	}
	registry := comp.Registry()

	bindings := comp.Config().Bindings
	fmt.Fprintf(out, "%d binding(s) attached\n", len(bindings))
	events := make(map[string]struct{})
	for _, b := range bindings {
		t, _ := ns.Lookup(b.Type)
		fmt.Fprintf(out, "  %-14s %-12s hasHandlers=%t\n", b.Event, b.Type, registry.HasHandlers(b.Event, t))
		events[b.Event] = struct{}{}
	}

	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "inherited:")
	for _, d := range decls {
		t, _ := ns.Lookup(d.Name)
		for _, name := range names {
			if registry.HasHandlers(name, t) {
				fmt.Fprintf(out, "  %-12s %s\n", d.Name, name)
			}
		}
	}

	agg := health.NewAggregator(0)
	agg.Register(comp.HealthChecker())
	report := agg.Check(ctx)
	fmt.Fprintf(out, "health: %s\n", report.Status)
	return nil
}

// declareTypes defines decls in order; a parent must be declared before its children
func declareTypes(out io.Writer, decls []typeDecl) (*typesys.Namespace, error) {
	ns := typesys.NewNamespace()
	for _, d := range decls {
		if err := validator.Validate(d); err != nil {
			return nil, fmt.Errorf("type %q: %w", d.Name, err)
		}
		var parent *typesys.Type
		if d.Parent != "" {
			p, ok := ns.Lookup(d.Parent)
			if !ok {
				return nil, event.ErrUnknownType.
					WithMsgf("parent %q of %q must be declared first", d.Parent, d.Name).
					WithData("type", d.Parent)
			}
			parent = p
		}
		t, err := ns.Define(d.Name, parent)
		if err != nil {
			return nil, err
		}
		for _, m := range d.Methods {
			t.Define(m, printMethod(out, d.Name, m))
		}
	}
	return ns, nil
}

func printMethod(out io.Writer, typeName, method string) event.Callback {
	return func(ctx context.Context, receiver any, e *event.Event) error {
		fmt.Fprintf(out, "%s.%s <- %s\n", typeName, method, e.Name)
		return nil
	}
}
