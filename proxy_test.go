package fieldproxy

import (
	"bytes"
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
	"github.com/zbh255/bilog"
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"
)

type point struct {
	x int
	y int
}

func TestNew(t *testing.T) {
	type Dummy struct {
		Id     int
		Name   string
		active bool
		_      int
		tags   []string
	}

	var nilPoint *point
	var nilInt *int
	var testCases = []struct {
		description string
		instance    interface{}
		expectNames []string
		expectError error
	}{
		{
			description: "exported and unexported fields",
			instance:    &Dummy{Id: 1},
			expectNames: []string{"Id", "Name", "active", "tags"},
		},
		{
			description: "unexported only",
			instance:    &point{x: 1, y: 2},
			expectNames: []string{"x", "y"},
		},
		{
			description: "empty struct",
			instance:    &struct{}{},
			expectNames: []string{},
		},
		{
			description: "nil instance",
			instance:    nil,
			expectError: ErrNilInstance,
		},
		{
			description: "typed nil pointer",
			instance:    nilPoint,
			expectError: ErrNilInstance,
		},
		{
			description: "struct value",
			instance:    point{x: 1},
			expectError: ErrNotAddressable,
		},
		{
			description: "not a struct",
			instance:    10,
			expectError: ErrNotStruct,
		},
		{
			description: "pointer to non struct",
			instance:    nilInt,
			expectError: ErrNotStruct,
		},
		{
			description: "pointer to struct pointer",
			instance:    &nilPoint,
			expectError: ErrNotStruct,
		},
	}

	for _, testCase := range testCases {
		proxy, err := New(testCase.instance)
		if testCase.expectError != nil {
			assert.True(t, errors.Is(err, testCase.expectError), testCase.description)
			assert.Nil(t, proxy, testCase.description)
			continue
		}
		require.Nil(t, err, testCase.description)
		actual := proxy.Names()
		sort.Strings(actual)
		expect := append([]string{}, testCase.expectNames...)
		sort.Strings(expect)
		if diff := cmp.Diff(expect, actual); diff != "" {
			t.Errorf("%s: names mismatch (-want +got):\n%s", testCase.description, diff)
		}
		assert.Equal(t, len(testCase.expectNames), proxy.Len(), testCase.description)
		assert.Same(t, testCase.instance, proxy.Instance(), testCase.description)
	}
}

func TestProxy_Point(t *testing.T) {
	p := &point{x: 1, y: 2}
	proxy, err := New(p)
	require.Nil(t, err)

	x, err := proxy.Get("x")
	require.Nil(t, err)
	assert.Equal(t, 1, x)
	y, err := proxy.Get("y")
	require.Nil(t, err)
	assert.Equal(t, 2, y)

	require.Nil(t, proxy.Set("x", 5))
	assert.Equal(t, 5, p.x)
	x, err = proxy.Get("x")
	require.Nil(t, err)
	assert.Equal(t, 5, x)
	assert.Equal(t, 2, p.y)
}

func TestProxy_LiveView(t *testing.T) {
	type Dummy struct {
		Id    int
		name  string
		items []int
	}
	dummy := &Dummy{Id: 1, name: "a"}
	proxy, err := New(dummy)
	require.Nil(t, err)

	dummy.Id = 10
	dummy.name = "changed"
	dummy.items = []int{1, 2}

	value, err := proxy.Get("Id")
	require.Nil(t, err)
	assert.Equal(t, 10, value)
	value, err = proxy.Get("name")
	require.Nil(t, err)
	assert.Equal(t, "changed", value)
	value, err = proxy.Get("items")
	require.Nil(t, err)
	assert.Equal(t, []int{1, 2}, value)

	require.Nil(t, proxy.Set("items", []int{3}))
	assert.Equal(t, []int{3}, dummy.items)
}

func TestProxy_ClosureBinding(t *testing.T) {
	type Dummy struct {
		a string
		b string
		c string
	}
	dummy := &Dummy{a: "A", b: "B", c: "C"}
	proxy, err := New(dummy)
	require.Nil(t, err)

	var getters []func() (interface{}, error)
	var setters []func(interface{}) error
	_ = proxy.Each(func(accessor *Accessor) (bool, error) {
		getters = append(getters, accessor.Get)
		setters = append(setters, accessor.Set)
		return true, nil
	})
	require.Len(t, getters, 3)
	for i, expect := range []string{"A", "B", "C"} {
		value, err := getters[i]()
		require.Nil(t, err)
		assert.Equal(t, expect, value)
	}
	for i, value := range []string{"1", "2", "3"} {
		require.Nil(t, setters[i](value))
	}
	assert.Equal(t, Dummy{a: "1", b: "2", c: "3"}, *dummy)
}

func TestProxy_ReadAfterWrite(t *testing.T) {
	type Dummy struct {
		I   int
		I8  int8
		U   uint
		F   float64
		F32 float32
		B   bool
		S   string
		T   time.Time
		Any interface{}
		M   map[string]int
		P   *int
	}
	one := 1
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var testCases = []struct {
		name  string
		value interface{}
	}{
		{name: "I", value: 42},
		{name: "I8", value: int8(-3)},
		{name: "U", value: uint(7)},
		{name: "F", value: 1.5},
		{name: "F32", value: float32(2.5)},
		{name: "B", value: true},
		{name: "S", value: "text"},
		{name: "T", value: ts},
		{name: "Any", value: "any"},
		{name: "M", value: map[string]int{"a": 1}},
		{name: "P", value: &one},
	}
	dummy := &Dummy{}
	proxy, err := New(dummy)
	require.Nil(t, err)
	for _, testCase := range testCases {
		require.Nil(t, proxy.Set(testCase.name, testCase.value), testCase.name)
		actual, err := proxy.Get(testCase.name)
		require.Nil(t, err, testCase.name)
		assert.Equal(t, testCase.value, actual, testCase.name)
	}
}

func TestProxy_SetConversion(t *testing.T) {
	type Status int
	type Dummy struct {
		I       int
		I8      int8
		U8      uint8
		F       float64
		F32     float32
		B       bool
		S       string
		Ints    []int
		Strings []string
		T       time.Time
		TPtr    *time.Time
		D       time.Duration
		Status  Status
		I64     int64
		U64     uint64
		Addr    uintptr
		Any     interface{}
	}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var testCases = []struct {
		description string
		name        string
		value       interface{}
		expect      interface{}
		expectError bool
	}{
		{description: "string to int", name: "I", value: "12", expect: 12},
		{description: "float to int", name: "I", value: 5.9, expect: 5},
		{description: "int32 to int", name: "I", value: int32(-4), expect: -4},
		{description: "uint to int", name: "I", value: uint16(8), expect: 8},
		{description: "invalid string to int", name: "I", value: "abc", expectError: true},
		{description: "int8 overflow", name: "I8", value: 300, expectError: true},
		{description: "negative to uint8", name: "U8", value: -1, expectError: true},
		{description: "string to uint8", name: "U8", value: "255", expect: uint8(255)},
		{description: "NaN to int", name: "I", value: math.NaN(), expectError: true},
		{description: "infinity to int", name: "I", value: math.Inf(1), expectError: true},
		{description: "float out of int range", name: "I", value: 1e30, expectError: true},
		{description: "float out of int8 range", name: "I8", value: 200.0, expectError: true},
		{description: "float to uint", name: "U64", value: 7.9, expect: uint64(7)},
		{description: "negative float to uint", name: "U64", value: -1.5, expectError: true},
		{description: "NaN to uint", name: "U64", value: math.NaN(), expectError: true},
		{description: "float out of uint range", name: "U64", value: 1e30, expectError: true},
		{description: "float to uint8", name: "U8", value: float32(12), expect: uint8(12)},
		{description: "negative float to uintptr", name: "Addr", value: -2.0, expectError: true},
		{description: "int to float", name: "F", value: 3, expect: 3.0},
		{description: "string to float", name: "F", value: "2.25", expect: 2.25},
		{description: "float64 to float32", name: "F32", value: 1.5, expect: float32(1.5)},
		{description: "string to bool", name: "B", value: "true", expect: true},
		{description: "int to bool", name: "B", value: 1, expect: true},
		{description: "int to string", name: "S", value: 15, expect: "15"},
		{description: "float to string", name: "S", value: 1.25, expect: "1.25"},
		{description: "bool to string", name: "S", value: false, expect: "false"},
		{description: "time to string", name: "S", value: ts, expect: "2024-01-02T03:04:05Z"},
		{description: "text to ints", name: "Ints", value: "1, 2,3", expect: []int{1, 2, 3}},
		{description: "text to strings", name: "Strings", value: "a,b", expect: []string{"a", "b"}},
		{description: "text to time", name: "T", value: "2024-01-02T03:04:05Z", expect: ts},
		{description: "unix to time", name: "T", value: 0, expect: time.Unix(0, 0)},
		{description: "text to time pointer", name: "TPtr", value: "2024-01-02T03:04:05Z", expect: &ts},
		{description: "text to duration", name: "D", value: "1m", expect: time.Minute},
		{description: "int to named int", name: "Status", value: 3, expect: Status(3)},
		{description: "int to int64", name: "I64", value: 3, expect: int64(3)},
		{description: "nil resets", name: "I64", value: nil, expect: int64(0)},
		{description: "int to interface", name: "Any", value: 3, expect: 3},
		{description: "unsupported", name: "Ints", value: struct{}{}, expectError: true},
	}

	for _, testCase := range testCases {
		proxy, err := New(&Dummy{I64: 9})
		require.Nil(t, err, testCase.description)
		before, err := proxy.Get(testCase.name)
		require.Nil(t, err, testCase.description)
		err = proxy.Set(testCase.name, testCase.value)
		if testCase.expectError {
			assert.NotNil(t, err, testCase.description)
			actual, _ := proxy.Get(testCase.name)
			assert.Equal(t, before, actual, testCase.description)
			continue
		}
		require.Nil(t, err, testCase.description)
		actual, err := proxy.Get(testCase.name)
		require.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestProxy_TimeLayout(t *testing.T) {
	type Dummy struct {
		Tagged time.Time `format:"timeLayout=2006-01-02"`
		Plain  time.Time
	}
	dummy := &Dummy{}
	proxy, err := New(dummy)
	require.Nil(t, err)
	require.Nil(t, proxy.Set("Tagged", "2024-03-04"))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), dummy.Tagged)

	proxy, err = New(dummy, WithTimeLayout("02/01/2006"))
	require.Nil(t, err)
	require.Nil(t, proxy.Set("Plain", "05/06/2023"))
	assert.Equal(t, time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC), dummy.Plain)
}

func TestProxy_Errors(t *testing.T) {
	type Dummy struct {
		Id   int
		name string
	}
	dummy := &Dummy{Id: 1, name: "x"}

	var testCases = []struct {
		description string
		options     []Option
		read        string
		write       string
		expectRead  error
		expectWrite error
	}{
		{
			description: "unknown field",
			read:        "Missing",
			write:       "Missing",
			expectRead:  ErrUnknownField,
			expectWrite: ErrUnknownField,
		},
		{
			description: "exported only policy denies unexported",
			options:     []Option{WithAccessPolicy(ExportedOnly)},
			read:        "name",
			write:       "name",
			expectRead:  ErrAccessDenied,
			expectWrite: ErrAccessDenied,
		},
		{
			description: "exported only policy allows exported",
			options:     []Option{WithAccessPolicy(ExportedOnly)},
			read:        "Id",
			write:       "Id",
		},
		{
			description: "read-only property",
			options:     []Option{WithReadOnly("Id")},
			read:        "Id",
			write:       "Id",
			expectWrite: ErrReadOnly,
		},
		{
			description: "read-only proxy",
			options:     []Option{WithReadOnly()},
			read:        "name",
			write:       "name",
			expectWrite: ErrReadOnly,
		},
	}

	for _, testCase := range testCases {
		proxy, err := New(dummy, testCase.options...)
		require.Nil(t, err, testCase.description)
		_, err = proxy.Get(testCase.read)
		if testCase.expectRead != nil {
			assert.True(t, errors.Is(err, testCase.expectRead), testCase.description)
		} else {
			assert.Nil(t, err, testCase.description)
		}
		err = proxy.Set(testCase.write, "2")
		if testCase.expectWrite != nil {
			assert.True(t, errors.Is(err, testCase.expectWrite), testCase.description)
		} else {
			assert.Nil(t, err, testCase.description)
		}
	}
	assert.Equal(t, "x", dummy.name)
}

func TestProxy_Names(t *testing.T) {
	type Dummy struct {
		FirstName string `format:"name=first"`
		LastName  string
		Secret    string `format:"-"`
	}

	var testCases = []struct {
		description string
		options     []Option
		expect      []string
		expectError error
	}{
		{
			description: "default names",
			expect:      []string{"FirstName", "LastName", "Secret"},
		},
		{
			description: "format tag",
			options:     []Option{WithFormatTag()},
			expect:      []string{"first", "LastName"},
		},
		{
			description: "case format",
			options:     []Option{WithCaseFormat(text.CaseFormatLowerCamel)},
			expect:      []string{"firstName", "lastName", "secret"},
		},
		{
			description: "customized names with aliases",
			options: []Option{WithCustomizedNames(func(name string, tag reflect.StructTag) []string {
				if name == "Secret" {
					return nil
				}
				return []string{name, strings.ToLower(name)}
			})},
			expect: []string{"FirstName", "firstname", "LastName", "lastname"},
		},
		{
			description: "duplicate names",
			options: []Option{WithCustomizedNames(func(name string, tag reflect.StructTag) []string {
				return []string{"same"}
			})},
			expectError: ErrDuplicateName,
		},
	}

	for _, testCase := range testCases {
		proxy, err := New(&Dummy{}, testCase.options...)
		if testCase.expectError != nil {
			assert.True(t, errors.Is(err, testCase.expectError), testCase.description)
			continue
		}
		require.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, proxy.Names(), testCase.description)
	}
}

func TestProxy_Aliases(t *testing.T) {
	type Dummy struct {
		Id int
	}
	dummy := &Dummy{}
	proxy, err := New(dummy, WithCustomizedNames(func(name string, tag reflect.StructTag) []string {
		return []string{name, "ID"}
	}))
	require.Nil(t, err)
	assert.Len(t, proxy.Type().Fields(), 1)
	require.Nil(t, proxy.Set("ID", 7))
	value, err := proxy.Get("Id")
	require.Nil(t, err)
	assert.Equal(t, 7, value)
	assert.Same(t, proxy.Lookup("Id").Field, proxy.Lookup("ID").Field)
}

func TestProxy_Nested(t *testing.T) {
	type address struct {
		City string
		zip  string
	}
	type person struct {
		Name string
		Home *address
		Work address
		Next *person
	}
	p := &person{Name: "Bob", Work: address{City: "Rome", zip: "00100"}}
	proxy, err := New(p, WithNested())
	require.Nil(t, err)
	assert.EqualValues(t, []string{"Name", "Home", "Home.City", "Home.zip", "Work", "Work.City", "Work.zip", "Next"}, proxy.Names())

	value, err := proxy.Get("Home.City")
	require.Nil(t, err)
	assert.Equal(t, "", value)
	assert.Nil(t, p.Home)

	require.Nil(t, proxy.Set("Home.City", "Paris"))
	require.NotNil(t, p.Home)
	assert.Equal(t, "Paris", p.Home.City)

	value, err = proxy.Get("Work.zip")
	require.Nil(t, err)
	assert.Equal(t, "00100", value)
	require.Nil(t, proxy.Set("Work.zip", "00200"))
	assert.Equal(t, "00200", p.Work.zip)
	assert.True(t, proxy.Lookup("Work.zip").Field.IsNested())
	assert.Equal(t, "Work.zip", proxy.Lookup("Work.zip").Field.Path())

	restricted, err := New(p, WithNested(), WithAccessPolicy(ExportedOnly))
	require.Nil(t, err)
	_, err = restricted.Get("Work.zip")
	assert.True(t, errors.Is(err, ErrAccessDenied))
	value, err = restricted.Get("Work.City")
	require.Nil(t, err)
	assert.Equal(t, "Rome", value)
}

func TestProxy_IsSet(t *testing.T) {
	type FooHas struct {
		Id   bool
		Name bool
	}
	type Foo struct {
		Id   int
		Name string
		Has  *FooHas `setMarker:"true"`
	}
	foo := &Foo{Id: 1}
	proxy, err := New(foo)
	require.Nil(t, err)
	assert.False(t, proxy.IsSet("Name"))
	require.Nil(t, proxy.Set("Name", "abc"))
	require.NotNil(t, foo.Has)
	assert.True(t, foo.Has.Name)
	assert.True(t, proxy.IsSet("Name"))
	assert.False(t, proxy.IsSet("Id"))
	assert.True(t, proxy.IsSet("Has"))
	assert.False(t, proxy.IsSet("Missing"))

	require.Nil(t, proxy.Set("Has", &FooHas{Id: true}))
	assert.True(t, proxy.IsSet("Id"))
	assert.False(t, proxy.IsSet("Name"))

	type Plain struct {
		Id int
	}
	plain, err := New(&Plain{})
	require.Nil(t, err)
	assert.True(t, plain.IsSet("Id"))
}

func TestProxy_Snapshot(t *testing.T) {
	type Dummy struct {
		Id   int
		name string
	}
	dummy := &Dummy{Id: 1, name: "a"}
	proxy, err := New(dummy)
	require.Nil(t, err)
	snapshot, err := proxy.Snapshot()
	require.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{"Id": 1, "name": "a"}, snapshot)

	dummy.Id = 2
	assert.Equal(t, 1, snapshot["Id"])

	restricted, err := New(dummy, WithAccessPolicy(ExportedOnly))
	require.Nil(t, err)
	snapshot, err = restricted.Snapshot()
	require.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{"Id": 2}, snapshot)
}

func TestProxy_GetReturnsCopy(t *testing.T) {
	type Dummy struct {
		Id     int
		Name   string
		ratio  float64
		Labels [2]string
		At     time.Time
	}
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	dummy := &Dummy{Id: 1, Name: "a", ratio: 0.5, Labels: [2]string{"x", "y"}, At: at}
	proxy, err := New(dummy)
	require.Nil(t, err)
	var captured = map[string]interface{}{}
	for _, name := range proxy.Names() {
		captured[name], err = proxy.Get(name)
		require.Nil(t, err)
	}

	dummy.Id = 42
	dummy.Name = "changed"
	dummy.ratio = 1.5
	dummy.Labels[0] = "z"
	dummy.At = at.Add(time.Hour)

	expect := map[string]interface{}{"Id": 1, "Name": "a", "ratio": 0.5, "Labels": [2]string{"x", "y"}, "At": at}
	if diff := cmp.Diff(expect, captured); diff != "" {
		t.Errorf("captured values changed after mutation (-want +got):\n%s", diff)
	}
	actual, err := proxy.Get("Id")
	require.Nil(t, err)
	assert.Equal(t, 42, actual)
}

func TestProxy_Visitor(t *testing.T) {
	p := &point{x: 3, y: 4}
	proxy, err := New(p)
	require.Nil(t, err)
	var visited = map[string]interface{}{}
	err = proxy.Visitor()(func(key string, value interface{}) (bool, error) {
		visited[key] = value
		return true, nil
	})
	require.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{"x": 3, "y": 4}, visited)

	restricted, err := New(p, WithAccessPolicy(ExportedOnly))
	require.Nil(t, err)
	err = restricted.Visitor()(func(key string, value interface{}) (bool, error) {
		return true, nil
	})
	assert.True(t, errors.Is(err, ErrAccessDenied))
}

func TestProxy_Logger(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := bilog.NewLogger(buffer, bilog.PANIC, bilog.WithTimes(), bilog.WithCaller(0), bilog.WithLowBuffer(0), bilog.WithTopBuffer(0))
	p := &point{x: 1}
	proxy, err := New(p, WithLogger(logger), WithReadOnly("y"))
	require.Nil(t, err)
	require.Nil(t, proxy.Set("x", 2))
	value, err := proxy.Get("x")
	require.Nil(t, err)
	assert.Equal(t, 2, value)
	assert.True(t, errors.Is(proxy.Set("y", 1), ErrReadOnly))
	logger.Flush()

	output := buffer.String()
	assert.Contains(t, output, "[DEBUG]")
	assert.Contains(t, output, "fieldproxy: set x = 2")
	assert.Contains(t, output, "fieldproxy: get x = 2")
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "fieldproxy: set y: failed to write y")

	quiet := new(bytes.Buffer)
	infoLogger := bilog.NewLogger(quiet, bilog.INFO, bilog.WithLowBuffer(0), bilog.WithTopBuffer(0))
	proxy, err = New(p, WithLogger(infoLogger))
	require.Nil(t, err)
	require.Nil(t, proxy.Set("x", 3))
	assert.Empty(t, quiet.String())
}
