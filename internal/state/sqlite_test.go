package state

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenAndMigrate(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err, "failed to open store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(program string, started time.Time) *Run {
	return &Run{
		Source:     "double.loop",
		Program:    program,
		Arithmetic: "big",
		Status:     RunStatusSuccess,
		Inputs:     map[string]string{"x": "3"},
		Outputs:    map[string]string{"x": "3", "y": "6"},
		Statements: 4,
		Iterations: 3,
		StartedAt:  started,
		Duration:   1500 * time.Microsecond,
	}
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate())

	rows, err := store.db.Query("SELECT 1 FROM runs LIMIT 1")
	require.NoError(t, err, "runs table should exist")
	_ = rows.Close()
}

func TestSQLiteStore_MigrateNotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	assert.Error(t, store.Migrate())
	_, err := store.GetMigrationVersion()
	assert.Error(t, err)
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := t.TempDir() + "/nested/dir/state.db"

	store, err := OpenAndMigrate(path, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.RecordRun(ctx, sampleRun("x := 1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := OpenAndMigrate(path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStore_RecordAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	run := sampleRun("x := 3\nloop x do y := y + 2 end", started)
	require.NoError(t, store.RecordRun(ctx, run))

	require.NotEmpty(t, run.ID, "ID assigned")
	assert.Equal(t, HashSource(run.Program), run.SourceHash)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "double.loop", got.Source)
	assert.Equal(t, run.Program, got.Program)
	assert.Equal(t, RunStatusSuccess, got.Status)
	assert.Empty(t, got.Error)
	assert.Equal(t, map[string]string{"x": "3"}, got.Inputs)
	assert.Equal(t, map[string]string{"x": "3", "y": "6"}, got.Outputs)
	assert.Equal(t, int64(4), got.Statements)
	assert.Equal(t, int64(3), got.Iterations)
	assert.True(t, started.Equal(got.StartedAt), "started_at round trips: %v", got.StartedAt)
	assert.Equal(t, 1500*time.Microsecond, got.Duration)
}

func TestSQLiteStore_FailedRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := &Run{
		Source:     "<stdin>",
		Program:    "x := 1 +",
		Arithmetic: "uint256",
		Status:     RunStatusFailed,
		Error:      "parse error at line 1, column 9",
	}
	require.NoError(t, store.RecordRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, run.Error, got.Error)
	assert.Empty(t, got.Inputs)
	assert.Empty(t, got.Outputs)
	assert.False(t, got.StartedAt.IsZero(), "started_at defaulted")
}

func TestSQLiteStore_GetRunByPrefix(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := sampleRun("a := 1", time.Now())
	a.ID = "abc11111-0000-0000-0000-000000000000"
	b := sampleRun("b := 1", time.Now())
	b.ID = "abc22222-0000-0000-0000-000000000000"
	require.NoError(t, store.RecordRun(ctx, a))
	require.NoError(t, store.RecordRun(ctx, b))

	got, err := store.GetRun(ctx, "abc1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = store.GetRun(ctx, "abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = store.GetRun(ctx, "zzz")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.GetRun(ctx, "abc_")
	assert.ErrorIs(t, err, ErrRunNotFound, "underscore is not a wildcard")

	_, err = store.GetRun(ctx, "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_ListAndPrune(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		run := sampleRun("x := "+strings.Repeat("1", i+1), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.RecordRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	assert.Equal(t, "x := 11111", runs[0].Program, "newest first")
	assert.Equal(t, "x := 1", runs[4].Program)

	runs, err = store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	deleted, err := store.PruneRuns(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	runs, err = store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "x := 111", runs[2].Program)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.RecordRun(ctx, &Run{}))
	_, err := store.GetRun(ctx, "x")
	assert.Error(t, err)
	_, err = store.ListRuns(ctx, 1)
	assert.Error(t, err)
	_, err = store.PruneRuns(ctx, 1)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		wantErr   string
	}{
		{
			name: "insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO runs").WillReturnError(errors.New("disk I/O error"))
			},
			call: func(s *SQLiteStore) error {
				return s.RecordRun(context.Background(), sampleRun("x := 1", time.Now()))
			},
			wantErr: "failed to record run: disk I/O error",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY").WillReturnError(errors.New("database is locked"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ListRuns(context.Background(), 10)
				return err
			},
			wantErr: "failed to list runs: database is locked",
		},
		{
			name: "corrupt started_at",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "source", "source_hash", "program", "arithmetic", "status", "error",
					"inputs", "outputs", "statements", "iterations", "started_at", "duration_us",
				}).AddRow("r1", "f", "h", "x := 1", "big", "success", nil, "{}", "{}", 1, 0, "yesterday", 10)
				mock.ExpectQuery("SELECT (.+) FROM runs WHERE").WillReturnRows(rows)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetRun(context.Background(), "r1")
				return err
			},
			wantErr: `bad started_at "yesterday"`,
		},
		{
			name: "corrupt outputs",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "source", "source_hash", "program", "arithmetic", "status", "error",
					"inputs", "outputs", "statements", "iterations", "started_at", "duration_us",
				}).AddRow("r1", "f", "h", "x := 1", "big", "success", nil, "{}", "[1]", 1, 0,
					"2026-01-01T00:00:00Z", 10)
				mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY").WillReturnRows(rows)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ListRuns(context.Background(), 0)
				return err
			},
			wantErr: "bad outputs",
		},
		{
			name: "prune fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM runs").WillReturnError(errors.New("readonly database"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.PruneRuns(context.Background(), 1)
				return err
			},
			wantErr: "failed to prune runs: readonly database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t))

			err = tt.call(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHashSource(t *testing.T) {
	assert.Equal(t, HashSource("x := 1"), HashSource("x := 1"))
	assert.NotEqual(t, HashSource("x := 1"), HashSource("x := 2"))
	assert.Len(t, HashSource(""), 64)
}
