// Package db is the local cache behind Sentinel.
//
// It stores two things and nothing else: the last artifact listing received
// from the vault (metadata only) and the digest ledger of fetched .sntl
// tokens. Plaintext never reaches this package.
//
// Supported backends are sqlite (the default, a file in the user cache dir),
// postgres and mysql. Schema changes ship as embedded migrations under
// migrations/<dbType>.
//
// Testing notes
//   - Use Open("sqlite", "file:<name>?mode=memory&cache=shared") for tests
//     that need real DB semantics and migrations.
package db
