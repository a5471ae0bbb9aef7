package router

import (
	"fmt"
	"reflect"
	"strconv"
)

// Variables maps placeholder names to the path segments they captured.
// Values are lowercase because paths are lowercased before matching.
type Variables map[string]string

// Get returns the value captured for name. ok is false when the route
// declares the placeholder but the path was too short to fill it.
func (v Variables) Get(name string) (value string, ok bool) {
	value, ok = v[name]
	return value, ok
}

// Clone returns an independent copy of v.
func (v Variables) Clone() Variables {
	if v == nil {
		return nil
	}
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Bind populates a struct from the variables.
// The target must be a pointer to a struct with `param` tags:
//
//	var p struct {
//	    Account int64  `param:"accountNumber"`
//	    Order   string `param:"orderNumber"`
//	}
//	err := match.Variables.Bind(&p)
//
// Fields whose variable is absent are left untouched.
func (v Variables) Bind(target any) error {
	if target == nil {
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", rv.Kind())
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", rv.Kind())
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}

		value, ok := v[name]
		if !ok {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("binding variable %q: %w", name, err)
		}
	}

	return nil
}

// setField sets a field value from a string.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
