// Package database provides the SQLite catalog store.
//
// Database implements catalog.Store. Entries live in a single movies table
// whose position column keeps catalog order, and every Save replaces the
// table inside one transaction. A metadata table records when the catalog
// was last written.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization. ImportFrom seeds an empty
// database from another store, typically the JSON document.
package database
