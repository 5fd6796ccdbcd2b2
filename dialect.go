package cubeql

import (
	"fmt"
	"sort"

	"github.com/zoobzio/cubeql/databricks"
	"github.com/zoobzio/cubeql/mariadb"
	"github.com/zoobzio/cubeql/mssql"
	"github.com/zoobzio/cubeql/postgres"
	"github.com/zoobzio/cubeql/sqlite"
)

// dialects maps each accepted dialect name to its constructor.
var dialects = map[string]func(cfg Config) Templates{
	"postgres":   func(Config) Templates { return postgres.New() },
	"postgresql": func(Config) Templates { return postgres.New() },
	"sqlite":     func(Config) Templates { return sqlite.New() },
	"mssql":      func(Config) Templates { return mssql.New() },
	"sqlserver":  func(Config) Templates { return mssql.New() },
	"mariadb":    func(Config) Templates { return mariadb.New() },
	"mysql":      func(Config) Templates { return mariadb.New() },
	"databricks": func(cfg Config) Templates {
		return databricks.New(databricks.WithCatalog(cfg.Catalog))
	},
}

// NewDialect returns the templates for a dialect name.
func NewDialect(name string, cfg Config) (Templates, error) {
	ctor, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
	return ctor(cfg), nil
}

// Dialects returns the canonical dialect names, sorted.
func Dialects() []string {
	seen := make(map[string]bool)
	var names []string
	for name, ctor := range dialects {
		canonical := ctor(DefaultConfig()).Dialect()
		if name == canonical && !seen[canonical] {
			seen[canonical] = true
			names = append(names, canonical)
		}
	}
	sort.Strings(names)
	return names
}
