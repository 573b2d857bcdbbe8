// Package migrations registers the schema migrations applied by the migrate
// and start commands. Each migration lives in its own file so bun can derive
// its name and ordering from the file name.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
