// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: importing it (even as a blank import)
// runs each backend's init, which registers its factory and DDL
// bootstrapper. After
//
//	import _ "fwetl/internal/storage/all"
//
// storage.New and storage.EnsureTable accept the kinds "sqlite", "postgres",
// "mssql", "mysql" and "duckdb". A binary that needs fewer backends can
// blank-import the backend packages it wants instead.
package all

import (
	_ "fwetl/internal/storage/duckdb"
	_ "fwetl/internal/storage/mssql"
	_ "fwetl/internal/storage/mysql"
	_ "fwetl/internal/storage/postgres"
	_ "fwetl/internal/storage/sqlite"
)
