package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "postgres", cfg: Config{Type: "postgres", Host: "localhost", Port: "5432"}, want: "postgres"},
		{name: "mysql", cfg: Config{Type: "MySQL"}, want: "mysql"},
		{name: "sqlite", cfg: Config{Type: "sqlite", Path: "payroll.db"}, want: "sqlite"},
		{name: "sqlite_without_path", cfg: Config{Type: "sqlite"}, wantErr: true},
		{name: "unsupported", cfg: Config{Type: "oracle"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dialector, err := Dialect(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, dialector.Name())
		})
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := Open(Config{Type: "sqlite", Path: "file::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
