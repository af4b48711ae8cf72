// Package reader holds application-wide defaults shared across subpackages.
package reader

const (
	DefaultAppName      = "readerapp"
	DefaultConfigPath   = "/etc/readerapp"
	DefaultDataDir      = ".readerapp"
	DefaultDatabasePath = ".readerapp/reader.db"
)
