package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Merge overwrites fields of group with values from the file. A field is
// touched only when it still equals the corresponding field of defaults, so
// values the user set explicitly on the command line are preserved. Both
// arguments must be pointers to the same struct type; defaults is the pristine
// instance produced by the group's constructor.
func (c *FileConfig) Merge(group, defaults any) error {
	if len(c.values) == 0 {
		return nil
	}

	gv := reflect.ValueOf(group)
	dv := reflect.ValueOf(defaults)
	if gv.Kind() != reflect.Pointer || gv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	if dv.Type() != gv.Type() {
		return ErrDefaultsMismatch
	}

	gv = gv.Elem()
	dv = dv.Elem()
	structType := gv.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		key := yamlKey(field)
		if key == "" {
			continue
		}
		raw, ok := c.values[key]
		if !ok {
			continue
		}
		// A value differing from the declared default means the user already
		// overrode this field; the file does not win.
		if !reflect.DeepEqual(gv.Field(i).Interface(), dv.Field(i).Interface()) {
			continue
		}
		if err := assign(gv.Field(i), raw); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// Argv serializes merged argument groups into argv tokens for the trainer
// process. The `config` field stays local to this process; empty strings and
// empty collections are omitted.
func Argv(groups ...any) ([]string, error) {
	var argv []string
	for _, group := range groups {
		gv := reflect.ValueOf(group)
		if gv.Kind() != reflect.Pointer || gv.Elem().Kind() != reflect.Struct {
			return nil, ErrNotStructPointer
		}
		gv = gv.Elem()
		structType := gv.Type()

		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			if !field.IsExported() {
				continue
			}
			key := yamlKey(field)
			if key == "" || key == "config" {
				continue
			}
			tokens, ok := argvTokens(key, gv.Field(i))
			if !ok {
				continue
			}
			argv = append(argv, tokens...)
		}
	}
	return argv, nil
}

func argvTokens(key string, value reflect.Value) ([]string, bool) {
	flag := "--" + key
	switch value.Kind() {
	case reflect.String:
		s := value.String()
		if s == "" {
			return nil, false
		}
		return []string{flag, s}, true
	case reflect.Bool:
		return []string{flag + "=" + strconv.FormatBool(value.Bool())}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []string{flag, strconv.FormatInt(value.Int(), 10)}, true
	case reflect.Float32, reflect.Float64:
		return []string{flag, strconv.FormatFloat(value.Float(), 'g', -1, 64)}, true
	case reflect.Slice, reflect.Map:
		if value.Len() == 0 {
			return nil, false
		}
		encoded, err := json.Marshal(value.Interface())
		if err != nil {
			return nil, false
		}
		return []string{flag, string(encoded)}, true
	default:
		return nil, false
	}
}

// assign coerces a decoded YAML value onto a struct field. Values that cannot
// be represented in the declared field type are rejected.
func assign(field reflect.Value, raw any) error {
	switch field.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as string", raw)
		}
		field.SetString(s)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("cannot use %T as bool", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(raw)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, field.Type())
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(raw)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		return assignSlice(field, raw)
	case reflect.Map:
		return assignMap(field, raw)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func assignSlice(field reflect.Value, raw any) error {
	items, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("cannot use %T as %s", raw, field.Type())
	}
	out := reflect.MakeSlice(field.Type(), len(items), len(items))
	for i, item := range items {
		if err := assign(out.Index(i), item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	field.Set(out)
	return nil
}

func assignMap(field reflect.Value, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot use %T as %s", raw, field.Type())
	}
	if !reflect.TypeOf(m).AssignableTo(field.Type()) {
		return fmt.Errorf("cannot use %T as %s", raw, field.Type())
	}
	field.Set(reflect.ValueOf(m))
	return nil
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > 1<<63-1 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("cannot use fractional value %v as integer", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("cannot use %T as float", raw)
	}
}

// yamlKey resolves the config-file key for a struct field from its yaml tag.
// An absent tag falls back to the lowercased field name; "-" opts out.
func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" {
		return strings.ToLower(field.Name)
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	return name
}
