//go:build cgo

package export

// driverName selects the cgo-backed SQLite driver when cgo is available,
// matching the teacher's internal/graph/db.go (database/sql + mattn/go-sqlite3).
import _ "github.com/mattn/go-sqlite3"

const driverName = "sqlite3"
