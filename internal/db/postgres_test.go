package db

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_seed_skills.sql": {Data: []byte("INSERT ...")},
		"0001_init.sql":        {Data: []byte("CREATE ...")},
		"0003_reports.sql":     {Data: []byte("ALTER ...")},
		"README.md":            {Data: []byte("docs")},
		"archive/0000_old.sql": {Data: []byte("--")},
	}

	pending, err := PendingMigrations(fsys, []string{"0001_init.sql"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_seed_skills.sql", "0003_reports.sql"}, pending)

	pending, err = PendingMigrations(fsys, []string{"0001_init.sql", "0002_seed_skills.sql", "0003_reports.sql"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPoolOptionsDefaults(t *testing.T) {
	opts := PoolOptions{MaxOpenConns: 5, MaxIdleConns: 20}.withDefaults()
	assert.Equal(t, 5, opts.MaxOpenConns)
	assert.Equal(t, 5, opts.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, opts.ConnMaxLifetime)

	opts = PoolOptions{}.withDefaults()
	assert.Equal(t, 50, opts.MaxOpenConns)
	assert.Equal(t, 10, opts.MaxIdleConns)
}
