//go:build !cgo

package export

// driverName falls back to the pure-Go SQLite driver when cgo is
// unavailable (cross-compiled builds, cgo-disabled environments), matching
// the teacher's cmd/test-synthetic use of modernc.org/sqlite.
import _ "modernc.org/sqlite"

const driverName = "sqlite"
