// Package history persists a ledger of conversions in SQLite.
//
// Each conversion is recorded when its export starts and updated once the
// export reaches a terminal status, so interrupted runs remain visible as
// waiting entries. The ledger is optional and only opened when enabled in
// configuration.
package history
