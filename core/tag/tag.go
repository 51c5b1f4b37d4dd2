package tag

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	tagName   = "default"
	separator = ","
)

var durationType = reflect.TypeFor[time.Duration]()

// ApplyDefaults sets zero-valued fields of the struct pointed to by target from their
// `default:"..."` tags. Nested structs are walked; non-zero fields are left untouched.
//
//	type ClientConfig struct {
//	    BaseURL  string        `default:"http://localhost:8080/api"`
//	    Cooldown time.Duration `default:"5s"`
//	}
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	return applyStruct(v.Elem(), "")
}

func applyStruct(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		switch {
		case fv.Kind() == reflect.Struct:
			if err := applyStruct(fv, path); err != nil {
				return err
			}
			continue
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			if err := applyStruct(fv.Elem(), path); err != nil {
				return err
			}
			continue
		}

		def, ok := field.Tag.Lookup(tagName)
		if !ok || def == "" || !fv.IsZero() {
			continue
		}
		if err := set(fv, def); err != nil {
			return &FieldError{Path: path, Kind: fv.Kind(), Value: def, Err: err}
		}
	}
	return nil
}

func set(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(s)
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Slice:
		parts := strings.Split(s, separator)
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := set(slice.Index(i), strings.TrimSpace(p)); err != nil {
				return err
			}
		}
		v.Set(slice)
	case reflect.Map:
		m := reflect.MakeMap(v.Type())
		for _, pair := range strings.Split(s, separator) {
			k, val, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key := reflect.New(v.Type().Key()).Elem()
			elem := reflect.New(v.Type().Elem()).Elem()
			if err := set(key, strings.TrimSpace(k)); err != nil {
				return err
			}
			if err := set(elem, strings.TrimSpace(val)); err != nil {
				return err
			}
			m.SetMapIndex(key, elem)
		}
		v.Set(m)
	default:
		return ErrUnsupportedType
	}
	return nil
}
