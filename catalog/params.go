// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// VariantKind is the type of a typed connection parameter.
type VariantKind int

// The connection parameter types.
const (
	StringVariant VariantKind = iota
	IntVariant
	BoolVariant
	URLVariant
)

// Variant is a typed connection parameter value.  Exactly one of
// the value fields is meaningful, as selected by Kind.
type Variant struct {
	Kind   VariantKind
	String string
	Int    int64
	Bool   bool
	URL    *url.URL
}

// paramSpec describes one connection parameter a store kind knows
// about.
type paramSpec struct {
	Kind     VariantKind
	Required bool
}

// storeSchema lists the known parameters for each store kind.
// Parameters not listed here are accepted as strings.  A store kind
// may also require one parameter out of a set; see oneOf.
var storeSchema = map[StoreKind]map[string]paramSpec{
	DataStore: {
		"url":                         {Kind: URLVariant},
		"directory":                   {Kind: StringVariant},
		"dbtype":                      {Kind: StringVariant},
		"namespace":                   {Kind: StringVariant},
		"port":                        {Kind: IntVariant},
		"charset":                     {Kind: StringVariant},
		"create spatial index":        {Kind: BoolVariant},
		"memory mapped buffer":        {Kind: BoolVariant},
		"cache and reuse memory maps": {Kind: BoolVariant},
	},
	CoverageStore: {
		"url": {Kind: URLVariant, Required: true},
	},
	WMSStore: {
		"capabilitiesURL":          {Kind: URLVariant, Required: true},
		"maxConnections":           {Kind: IntVariant},
		"readTimeout":              {Kind: IntVariant},
		"connectTimeout":           {Kind: IntVariant},
		"useHttpConnectionPooling": {Kind: BoolVariant},
	},
	WMTSStore: {
		"capabilitiesURL":          {Kind: URLVariant, Required: true},
		"maxConnections":           {Kind: IntVariant},
		"readTimeout":              {Kind: IntVariant},
		"connectTimeout":           {Kind: IntVariant},
		"useHttpConnectionPooling": {Kind: BoolVariant},
	},
}

// oneOf lists parameter sets where at least one member is required.
var oneOf = map[StoreKind][]string{
	DataStore: {"url", "directory", "dbtype"},
}

// ParseConnection validates raw connection parameters against the
// schema for kind and converts them to typed values.  Failures are
// ValidationFailed errors.
func ParseConnection(kind StoreKind, raw map[string]string) (map[string]Variant, error) {
	schema, ok := storeSchema[kind]
	if !ok {
		return nil, Errorf(ValidationFailed, "unknown store kind %q", kind)
	}
	result := make(map[string]Variant, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := parseVariant(schema[k].Kind, raw[k])
		if err != nil {
			return nil, WrapError(ValidationFailed, err, "connection parameter %q", k)
		}
		result[k] = v
	}
	for k, spec := range schema {
		if _, present := raw[k]; spec.Required && !present {
			return nil, Errorf(ValidationFailed, "%s requires connection parameter %q", kind, k)
		}
	}
	if set, ok := oneOf[kind]; ok {
		found := false
		for _, k := range set {
			if _, present := raw[k]; present {
				found = true
				break
			}
		}
		if !found {
			return nil, Errorf(ValidationFailed, "%s requires one of the connection parameters %s", kind, strings.Join(set, ", "))
		}
	}
	return result, nil
}

func parseVariant(kind VariantKind, s string) (Variant, error) {
	v := Variant{Kind: kind}
	var err error
	switch kind {
	case IntVariant:
		v.Int, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case BoolVariant:
		v.Bool, err = strconv.ParseBool(strings.TrimSpace(s))
	case URLVariant:
		v.URL, err = url.Parse(s)
		if err == nil && v.URL.Scheme == "" {
			err = fmt.Errorf("%q is not an absolute URL", s)
		}
	default:
		v.String = s
	}
	return v, err
}

// FileSettings is the part of a store's connection that locates its
// backing files.
type FileSettings struct {
	URL       string `mapstructure:"url"`
	Directory string `mapstructure:"directory"`
	Namespace string `mapstructure:"namespace"`
	Charset   string `mapstructure:"charset"`
}

// Location returns the "file:" location of the store's data, with
// the scheme removed, or "" if the store is not file based.
func (fs FileSettings) Location() string {
	for _, loc := range []string{fs.URL, fs.Directory} {
		if strings.HasPrefix(loc, "file:") {
			loc = strings.TrimPrefix(loc, "file:")
			loc = strings.TrimLeft(loc, "/")
			return strings.TrimRight(loc, "/")
		}
	}
	return ""
}

// Settings decodes the store's connection parameters into
// FileSettings.  Unknown parameters are ignored.
func (st *Store) Settings() (FileSettings, error) {
	var fs FileSettings
	err := mapstructure.WeakDecode(st.Connection, &fs)
	return fs, err
}
