package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration matches every *ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports missing or invalid settings. It is fatal: the
// CLI prints Remediation and exits.
type ConfigurationError struct {
	// Source is the file or variable at fault, when known.
	Source string
	// Missing lists required keys that are unset, as "section.key (ENV_NAME)".
	Missing []string
	// Invalid lists keys whose values were rejected.
	Invalid []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	msg := "configuration: " + strings.Join(parts, "; ")
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Remediation is the help text shown next to the error.
func (e *ConfigurationError) Remediation() string {
	return `Set the backend credentials in ` + FileName + `, a .env file or the environment:

  # .offercrm.yaml
  backend: airtable
  airtable:
    api_key: patXXXXXXXX
    base_id: appXXXXXXXX
    table_name: Jobs

  # or .env
  AIRTABLE_API_KEY=patXXXXXXXX
  AIRTABLE_BASE_ID=appXXXXXXXX
  AIRTABLE_TABLE_NAME=Jobs

For Notion use NOTION_TOKEN and NOTION_DB_ID with backend: notion.`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if env := fld.Tag.Get("env"); env != "" {
				return name + " (" + env + ")"
			}
			return name
		})
	})
	return validate
}

// sharedSettings are validated whatever the backend.
type sharedSettings struct {
	Backend   string          `yaml:"backend" validate:"required,oneof=airtable notion sqlite"`
	Cache     CacheConfig     `yaml:"cache"`
	Remote    RemoteConfig    `yaml:"remote"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// Validate checks the shared settings and those of the selected backend
// only, so unused backends may stay empty.
func (c *Config) Validate() error {
	v := validatorInstance()
	cerr := &ConfigurationError{Source: c.Source}

	shared := sharedSettings{c.Backend, c.Cache, c.Remote, c.Dashboard, c.Log}
	collect(cerr, "", v.Struct(shared))

	switch c.Backend {
	case "airtable":
		collect(cerr, "airtable.", v.Struct(c.Airtable))
	case "notion":
		collect(cerr, "notion.", v.Struct(c.Notion))
	case "sqlite":
		collect(cerr, "sqlite.", v.Struct(c.SQLite))
	}

	if len(cerr.Missing) == 0 && len(cerr.Invalid) == 0 {
		return nil
	}
	sort.Strings(cerr.Missing)
	sort.Strings(cerr.Invalid)
	return cerr
}

func collect(cerr *ConfigurationError, prefix string, err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		cerr.Err = err
		return
	}
	for _, fe := range verrs {
		key := prefix + strings.TrimPrefix(fe.Namespace(), rootName(fe))
		if fe.Tag() == "required" {
			cerr.Missing = append(cerr.Missing, key)
			continue
		}
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("%s=%v", key, fe.Value()))
	}
}

// rootName is the struct name prefix validator puts on namespaces
// ("AirtableConfig.api_key (AIRTABLE_API_KEY)").
func rootName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
