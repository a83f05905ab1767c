// Package flagx binds cobra flags to option structs through `flag` tags.
//
//	type DemoOptions struct {
//	    Config string        `flag:"config,c" usage:"config directory" default:"./configs"`
//	    Trace  bool          `flag:"trace" usage:"export spans to stdout"`
//	    Wait   time.Duration `flag:"wait" default:"1s"`
//	}
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

type fieldFlag struct {
	index    int
	name     string
	short    string
	usage    string
	def      string
	required bool
}

// BindFlags registers a local flag on cmd for every tagged field of target
func BindFlags(cmd *cobra.Command, target any) error {
	fields, err := tagged(target)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if err := register(cmd.Flags(), target, f); err != nil {
			return err
		}
		if f.required {
			if err := cmd.MarkFlagRequired(f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// BindPersistentFlags is BindFlags for flags inherited by subcommands
func BindPersistentFlags(cmd *cobra.Command, target any) error {
	fields, err := tagged(target)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if err := register(cmd.PersistentFlags(), target, f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFlags copies the parsed flag values of cmd into target
func ParseFlags(cmd *cobra.Command, target any) error {
	fields, err := tagged(target)
	if err != nil {
		return err
	}
	v := reflect.ValueOf(target).Elem()
	for _, f := range fields {
		flag := cmd.Flags().Lookup(f.name)
		if flag == nil {
			flag = cmd.InheritedFlags().Lookup(f.name)
		}
		if flag == nil {
			return fmt.Errorf("flag --%s is not defined", f.name)
		}
		if err := set(v.Field(f.index), flag); err != nil {
			return fmt.Errorf("flag --%s: %w", f.name, err)
		}
	}
	return nil
}

func tagged(target any) ([]fieldFlag, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a pointer to struct, got %T", target)
	}
	t := v.Elem().Type()

	var out []fieldFlag
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("flag")
		if tag == "" || !sf.IsExported() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, fieldFlag{
			index:    i,
			name:     name,
			short:    short,
			usage:    sf.Tag.Get("usage"),
			def:      sf.Tag.Get("default"),
			required: sf.Tag.Get("required") == "true",
		})
	}
	return out, nil
}

func register(fs *pflag.FlagSet, target any, f fieldFlag) error {
	ft := reflect.ValueOf(target).Elem().Type().Field(f.index).Type
	switch {
	case ft == durationType:
		def, err := parseDefault(f, time.ParseDuration)
		if err != nil {
			return err
		}
		fs.DurationP(f.name, f.short, def, f.usage)
	case ft.Kind() == reflect.String:
		fs.StringP(f.name, f.short, f.def, f.usage)
	case ft.Kind() == reflect.Int:
		def, err := parseDefault(f, strconv.Atoi)
		if err != nil {
			return err
		}
		fs.IntP(f.name, f.short, def, f.usage)
	case ft.Kind() == reflect.Bool:
		def, err := parseDefault(f, strconv.ParseBool)
		if err != nil {
			return err
		}
		fs.BoolP(f.name, f.short, def, f.usage)
	case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.String:
		var def []string
		if f.def != "" {
			def = strings.Split(f.def, ",")
		}
		fs.StringSliceP(f.name, f.short, def, f.usage)
	default:
		return fmt.Errorf("flag --%s: unsupported field type %s", f.name, ft)
	}
	return nil
}

func set(field reflect.Value, flag *pflag.Flag) error {
	raw := flag.Value.String()
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(raw)
	case field.Kind() == reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case field.Kind() == reflect.Slice:
		sv, ok := flag.Value.(pflag.SliceValue)
		if !ok {
			return fmt.Errorf("flag is not a list")
		}
		field.Set(reflect.ValueOf(sv.GetSlice()))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func parseDefault[T any](f fieldFlag, parse func(string) (T, error)) (T, error) {
	var zero T
	if f.def == "" {
		return zero, nil
	}
	v, err := parse(f.def)
	if err != nil {
		return zero, fmt.Errorf("flag --%s: bad default %q: %w", f.name, f.def, err)
	}
	return v, nil
}
