package db

// Config describes a read-only SQL source for the payroll dataset.
type Config struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	// Path is the database file for sqlite.
	Path string
}
