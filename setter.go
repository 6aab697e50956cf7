package fieldproxy

import (
	"fmt"
	"github.com/viant/tagly/format"
	"github.com/viant/xunsafe"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

type (
	//Setter sets src on a holder field, converting src to the field type
	Setter func(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error

	setterOptions struct {
		timeLayout string
	}

	//SetterOption represents setter option
	SetterOption func(o *setterOptions)
)

// WithSetterTimeLayout returns setter option with time layout
func WithSetterTimeLayout(timeLayout string) SetterOption {
	return func(o *setterOptions) {
		o.timeLayout = timeLayout
	}
}

func newSetterOptions(opts []SetterOption) *setterOptions {
	ret := &setterOptions{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// target returns a settable value backed by the holder field memory
func target(field *xunsafe.Field, holder unsafe.Pointer) reflect.Value {
	return reflect.NewAt(field.Type, field.Pointer(holder)).Elem()
}

func conversionError(src interface{}, field *xunsafe.Field, err error) error {
	return fmt.Errorf("failed to convert %T to %s for %s: %w", src, field.Type.String(), field.Name, err)
}

func stringToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetString(reflect.ValueOf(src).String())
	return nil
}

func intToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetString(strconv.FormatInt(reflect.ValueOf(src).Int(), 10))
	return nil
}

func uintToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetString(strconv.FormatUint(reflect.ValueOf(src).Uint(), 10))
	return nil
}

func floatToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := reflect.ValueOf(src)
	target(field, holder).SetString(strconv.FormatFloat(value.Float(), 'f', -1, value.Type().Bits()))
	return nil
}

func boolToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetString(strconv.FormatBool(reflect.ValueOf(src).Bool()))
	return nil
}

func timeToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := src.(time.Time)
	target(field, holder).SetString(value.Format(timeLayout(field, opts)))
	return nil
}

func timePtrToString(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := src.(*time.Time)
	if value == nil {
		target(field, holder).SetString("")
		return nil
	}
	target(field, holder).SetString(value.Format(timeLayout(field, opts)))
	return nil
}

func setInt(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, value int64) error {
	dest := target(field, holder)
	if dest.OverflowInt(value) {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	dest.SetInt(value)
	return nil
}

func setUint(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, value uint64) error {
	dest := target(field, holder)
	if dest.OverflowUint(value) {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	dest.SetUint(value)
	return nil
}

func stringToInt(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value, err := strconv.ParseInt(strings.TrimSpace(reflect.ValueOf(src).String()), 10, 64)
	if err != nil {
		return conversionError(src, field, err)
	}
	return setInt(src, field, holder, value)
}

func intToInt(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	return setInt(src, field, holder, reflect.ValueOf(src).Int())
}

func uintToInt(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := reflect.ValueOf(src).Uint()
	if value > 1<<63-1 {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	return setInt(src, field, holder, int64(value))
}

// floatToInt truncates src, NaN and values outside of int64 range are rejected
func floatToInt(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := reflect.ValueOf(src).Float()
	if math.IsNaN(value) || value < math.MinInt64 || value >= math.MaxInt64 {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	return setInt(src, field, holder, int64(value))
}

// floatToUint truncates src, NaN, negative and values outside of uint64 range are rejected
func floatToUint(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := reflect.ValueOf(src).Float()
	if math.IsNaN(value) || value >= math.MaxUint64 {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	if value < 0 {
		return conversionError(src, field, fmt.Errorf("negative value %v", value))
	}
	return setUint(src, field, holder, uint64(value))
}

func stringToUint(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value, err := strconv.ParseUint(strings.TrimSpace(reflect.ValueOf(src).String()), 10, 64)
	if err != nil {
		return conversionError(src, field, err)
	}
	return setUint(src, field, holder, value)
}

func intToUint(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value := reflect.ValueOf(src).Int()
	if value < 0 {
		return conversionError(src, field, fmt.Errorf("negative value %v", value))
	}
	return setUint(src, field, holder, uint64(value))
}

func uintToUint(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	return setUint(src, field, holder, reflect.ValueOf(src).Uint())
}

func stringToBool(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value, err := strconv.ParseBool(strings.TrimSpace(reflect.ValueOf(src).String()))
	if err != nil {
		return conversionError(src, field, err)
	}
	target(field, holder).SetBool(value)
	return nil
}

func intToBool(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetBool(reflect.ValueOf(src).Int() != 0)
	return nil
}

func boolToBool(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	target(field, holder).SetBool(reflect.ValueOf(src).Bool())
	return nil
}

func setFloat(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, value float64) error {
	dest := target(field, holder)
	if dest.OverflowFloat(value) {
		return conversionError(src, field, fmt.Errorf("value %v overflows", value))
	}
	dest.SetFloat(value)
	return nil
}

func stringToFloat(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(reflect.ValueOf(src).String()), field.Type.Bits())
	if err != nil {
		return conversionError(src, field, err)
	}
	return setFloat(src, field, holder, value)
}

func floatToFloat(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	return setFloat(src, field, holder, reflect.ValueOf(src).Float())
}

func intToFloat(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	return setFloat(src, field, holder, float64(reflect.ValueOf(src).Int()))
}

func uintToFloat(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	return setFloat(src, field, holder, float64(reflect.ValueOf(src).Uint()))
}

// stringToSlice converts comma separated text into a slice of field element type
func stringToSlice(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	text := reflect.ValueOf(src).String()
	elemType := field.Type.Elem()
	var items []string
	if text = strings.TrimSpace(text); text != "" {
		items = strings.Split(text, ",")
	}
	result := reflect.MakeSlice(field.Type, len(items), len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		elem := result.Index(i)
		switch elemType.Kind() {
		case reflect.String:
			elem.SetString(item)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			value, err := strconv.ParseInt(item, 10, elemType.Bits())
			if err != nil {
				return conversionError(src, field, err)
			}
			elem.SetInt(value)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			value, err := strconv.ParseUint(item, 10, elemType.Bits())
			if err != nil {
				return conversionError(src, field, err)
			}
			elem.SetUint(value)
		case reflect.Float32, reflect.Float64:
			value, err := strconv.ParseFloat(item, elemType.Bits())
			if err != nil {
				return conversionError(src, field, err)
			}
			elem.SetFloat(value)
		default:
			return conversionError(src, field, ErrUnsupportedConversion)
		}
	}
	target(field, holder).Set(result)
	return nil
}

func stringToTime(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	ts, err := ParseTime(timeLayout(field, opts), reflect.ValueOf(src).String())
	if err != nil {
		return conversionError(src, field, err)
	}
	target(field, holder).Set(reflect.ValueOf(ts))
	return nil
}

func intToTime(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	ts := time.Unix(reflect.ValueOf(src).Int(), 0)
	target(field, holder).Set(reflect.ValueOf(ts))
	return nil
}

func stringToTimePtr(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	ts, err := ParseTime(timeLayout(field, opts), reflect.ValueOf(src).String())
	if err != nil {
		return conversionError(src, field, err)
	}
	target(field, holder).Set(reflect.ValueOf(&ts))
	return nil
}

func intToTimePtr(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	ts := time.Unix(reflect.ValueOf(src).Int(), 0)
	target(field, holder).Set(reflect.ValueOf(&ts))
	return nil
}

func stringToDuration(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	value, err := time.ParseDuration(strings.TrimSpace(reflect.ValueOf(src).String()))
	if err != nil {
		return conversionError(src, field, err)
	}
	target(field, holder).SetInt(int64(value))
	return nil
}

func anyToAny(src interface{}, field *xunsafe.Field, holder unsafe.Pointer, opts ...SetterOption) error {
	dest := target(field, holder)
	if src == nil {
		dest.Set(reflect.Zero(field.Type))
		return nil
	}
	value := reflect.ValueOf(src)
	switch {
	case isFloat(value.Kind()) && isInt(field.Type.Kind()):
		return floatToInt(src, field, holder, opts...)
	case isFloat(value.Kind()) && isUint(field.Type.Kind()):
		return floatToUint(src, field, holder, opts...)
	case value.Type().AssignableTo(field.Type):
		dest.Set(value)
	case value.Type().ConvertibleTo(field.Type) && value.Kind() != reflect.String && field.Type.Kind() != reflect.String:
		dest.Set(value.Convert(field.Type))
	case value.Kind() == reflect.Ptr && !value.IsNil() && value.Elem().Type().AssignableTo(field.Type):
		dest.Set(value.Elem())
	default:
		return conversionError(src, field, ErrUnsupportedConversion)
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// LookupSetter returns a setter converting src type to dest type
func LookupSetter(src reflect.Type, dest reflect.Type) Setter {
	if src == nil {
		return anyToAny
	}
	srcKind := src.Kind()
	switch dest.Kind() {
	case reflect.String:
		switch {
		case src == timeType:
			return timeToString
		case src == timePtrType:
			return timePtrToString
		case srcKind == reflect.String:
			return stringToString
		case isInt(srcKind):
			return intToString
		case isUint(srcKind):
			return uintToString
		case isFloat(srcKind):
			return floatToString
		case srcKind == reflect.Bool:
			return boolToString
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dest == durationType && srcKind == reflect.String {
			return stringToDuration
		}
		switch {
		case srcKind == reflect.String:
			return stringToInt
		case isInt(srcKind):
			return intToInt
		case isUint(srcKind):
			return uintToInt
		case isFloat(srcKind):
			return floatToInt
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case srcKind == reflect.String:
			return stringToUint
		case isInt(srcKind):
			return intToUint
		case isUint(srcKind):
			return uintToUint
		case isFloat(srcKind):
			return floatToUint
		}
	case reflect.Bool:
		switch {
		case srcKind == reflect.Bool:
			return boolToBool
		case srcKind == reflect.String:
			return stringToBool
		case isInt(srcKind):
			return intToBool
		}
	case reflect.Float32, reflect.Float64:
		switch {
		case isFloat(srcKind):
			return floatToFloat
		case srcKind == reflect.String:
			return stringToFloat
		case isInt(srcKind):
			return intToFloat
		case isUint(srcKind):
			return uintToFloat
		}
	case reflect.Slice:
		if srcKind == reflect.String {
			return stringToSlice
		}
	case reflect.Struct:
		if dest == timeType {
			switch {
			case srcKind == reflect.String:
				return stringToTime
			case isInt(srcKind):
				return intToTime
			}
		}
	case reflect.Ptr:
		if dest == timePtrType {
			switch {
			case srcKind == reflect.String:
				return stringToTimePtr
			case isInt(srcKind):
				return intToTimePtr
			}
		}
	}
	return anyToAny
}

// ParseTime parses input with layout truncated to the input length, RFC3339 is used by default
func ParseTime(layout, input string) (time.Time, error) {
	if len(layout) == 0 {
		layout = time.RFC3339
	}
	lastPosition := len(input)
	if lastPosition >= len(layout) {
		lastPosition = len(layout)
	}
	layout = layout[0:lastPosition]
	return time.Parse(layout, input)
}

func timeLayout(field *xunsafe.Field, opts []SetterOption) string {
	if len(opts) > 0 {
		if options := newSetterOptions(opts); options.timeLayout != "" {
			return options.timeLayout
		}
	}
	tag := fieldTag(field)
	return tag.TimeLayout
}

func fieldTag(field *xunsafe.Field) *format.Tag {
	tag, _ := format.Parse(field.Tag)
	if tag == nil {
		tag = &format.Tag{}
	}
	if tag.TimeLayout == "" {
		tag.TimeLayout = field.Tag.Get("timeLayout")
	}
	if tag.TimeLayout == "" {
		tag.TimeLayout = time.RFC3339
	}
	return tag
}
