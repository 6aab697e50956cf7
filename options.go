package fieldproxy

import (
	"github.com/viant/tagly/format"
	"github.com/viant/tagly/format/text"
	"github.com/zbh255/bilog"
	"reflect"
)

const formatTagName = "format"

type (
	options struct {
		getNames    func(name string, tag reflect.StructTag) []string
		formatTag   bool
		caseFormat  text.CaseFormat
		nested      bool
		policy      AccessPolicy
		readOnly    map[string]bool
		readOnlyAll bool
		timeLayout  string
		logger      bilog.Logger
	}

	//Option represents proxy option
	Option func(o *options)
)

func newOptions(opts []Option) *options {
	ret := &options{policy: Unrestricted}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.getNames == nil {
		ret.getNames = ret.defaultNames
	}
	return ret
}

func (o *options) defaultNames(name string, tag reflect.StructTag) []string {
	if o.formatTag {
		if tag.Get(formatTagName) == "-" {
			return nil
		}
		if fTag, err := format.Parse(tag); err == nil && fTag != nil {
			if fTag.Ignore {
				return nil
			}
			if fTag.Name != "" {
				name = fTag.Name
			}
		}
	}
	if o.caseFormat != "" {
		src := text.DetectCaseFormat(name)
		if !src.IsDefined() {
			src = text.CaseFormatUpperCamel
		}
		name = src.Format(name, o.caseFormat)
	}
	return []string{name}
}

func (o *options) isReadOnly(name string) bool {
	return o.readOnlyAll || o.readOnly[name]
}

// WithCustomizedNames returns option with customized property names, returning no names hides the field
func WithCustomizedNames(fn func(name string, tag reflect.StructTag) []string) Option {
	return func(o *options) {
		o.getNames = fn
	}
}

// WithFormatTag returns option using format tag name and ignore directives
func WithFormatTag() Option {
	return func(o *options) {
		o.formatTag = true
	}
}

// WithCaseFormat returns option converting property names to supplied case format
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return func(o *options) {
		o.caseFormat = caseFormat
	}
}

// WithNested returns option exposing nested struct fields as dotted paths
func WithNested() Option {
	return func(o *options) {
		o.nested = true
	}
}

// WithAccessPolicy returns option with field access policy
func WithAccessPolicy(policy AccessPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithReadOnly returns option making supplied properties read-only, all properties if none supplied
func WithReadOnly(names ...string) Option {
	return func(o *options) {
		if len(names) == 0 {
			o.readOnlyAll = true
			return
		}
		if o.readOnly == nil {
			o.readOnly = make(map[string]bool, len(names))
		}
		for _, name := range names {
			o.readOnly[name] = true
		}
	}
}

// WithTimeLayout returns option with time layout used by text to time conversion
func WithTimeLayout(layout string) Option {
	return func(o *options) {
		o.timeLayout = layout
	}
}

// WithLogger returns option tracing property access with supplied logger
func WithLogger(logger bilog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
