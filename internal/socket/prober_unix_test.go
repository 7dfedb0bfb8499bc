//go:build unix

package socket

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// shortTempDir returns a fresh directory with a short path. Socket paths
// are limited to ~104 bytes, which t.TempDir() can exceed on macOS.
func shortTempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "pf")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// startServers listens on test.sock, test1.sock, ... test<n-1>.sock in dir.
func startServers(t *testing.T, dir string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		name := "test.sock"
		if i > 0 {
			name = "test" + strconv.Itoa(i) + ".sock"
		}
		ln, err := net.Listen("unix", filepath.Join(dir, name))
		require.NoError(t, err, "failed to start test server %s", name)
		t.Cleanup(func() { _ = ln.Close() })
	}
}

// TestFindFreeSocket_FiveServers reproduces the classic scenario: with
// servers on test.sock through test4.sock the answer is test5.sock.
func TestFindFreeSocket_FiveServers(t *testing.T) {
	dir := shortTempDir(t)
	startServers(t, dir, 5)

	got, err := FindFreeSocket(filepath.Join(dir, "test.sock"), Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test5.sock"), got)
}

// TestFindFreeSocket_OneServer verifies the first suffixed candidate is
// returned when only the base is taken.
func TestFindFreeSocket_OneServer(t *testing.T) {
	dir := shortTempDir(t)
	startServers(t, dir, 1)

	got, err := FindFreeSocket(filepath.Join(dir, "test.sock"), Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test1.sock"), got)
}

// TestFindFreeSocket_ExistingDirNoServers verifies the base path is
// returned and no socket file is left behind by the probe.
func TestFindFreeSocket_ExistingDirNoServers(t *testing.T) {
	dir := shortTempDir(t)
	path := filepath.Join(dir, "exists.sock")

	got, err := FindFreeSocket(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "probe should remove the socket file")
}

// TestFindFreeSocket_MissingDir verifies a path in a directory that does
// not exist is returned unchanged and the directory is not created.
func TestFindFreeSocket_MissingDir(t *testing.T) {
	badDir := filepath.Join(shortTempDir(t), "bad-dir")
	path := filepath.Join(badDir, "test.sock")

	got, err := FindFreeSocket(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = os.Stat(badDir)
	assert.True(t, os.IsNotExist(err), "directory creation is the caller's job by default")
}

// TestFindFreeSocket_CreateDir verifies the opt-in directory creation.
func TestFindFreeSocket_CreateDir(t *testing.T) {
	newDir := filepath.Join(shortTempDir(t), "made")
	path := filepath.Join(newDir, "test.sock")

	got, err := FindFreeSocket(path, Options{CreateDir: true, DirMode: 0o700})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

// TestFindFreeSocket_SkipDirCheck verifies that without the directory
// shortcut a missing directory is a bind failure.
func TestFindFreeSocket_SkipDirCheck(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "nope", "test.sock")

	_, err := FindFreeSocket(path, Options{SkipDirCheck: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBindFailure)
}

// TestFindFreeSocket_ParentIsFile verifies a regular file where the
// directory should be is reported as an error, not retried.
func TestFindFreeSocket_ParentIsFile(t *testing.T) {
	file := filepath.Join(shortTempDir(t), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := FindFreeSocket(filepath.Join(file, "test.sock"), Options{})
	assert.ErrorIs(t, err, model.ErrBindFailure)
}

// TestFindFreeSocket_LeftoverFile verifies a file left behind at the base
// path counts as in use.
func TestFindFreeSocket_LeftoverFile(t *testing.T) {
	dir := shortTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.sock"), nil, 0o600))

	got, err := FindFreeSocket(filepath.Join(dir, "test.sock"), Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test1.sock"), got)
}

// TestFindFreeSocket_MaxAttempts verifies the attempt budget.
func TestFindFreeSocket_MaxAttempts(t *testing.T) {
	dir := shortTempDir(t)
	startServers(t, dir, 3)

	_, err := FindFreeSocket(filepath.Join(dir, "test.sock"), Options{MaxAttempts: 2})
	assert.ErrorIs(t, err, model.ErrExhausted)
}

// TestFindFreeSocket_Idempotent verifies two calls with no intervening
// binds return the same path.
func TestFindFreeSocket_Idempotent(t *testing.T) {
	dir := shortTempDir(t)
	startServers(t, dir, 2)
	base := filepath.Join(dir, "test.sock")

	first, err := FindFreeSocket(base, Options{})
	require.NoError(t, err)
	second, err := FindFreeSocket(base, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestProbe_Outcomes checks the prober directly.
func TestProbe_Outcomes(t *testing.T) {
	dir := shortTempDir(t)
	startServers(t, dir, 1)
	p := NewProber(Options{})

	assert.Equal(t, model.OutcomeInUse, p.Probe(filepath.Join(dir, "test.sock")).Outcome)
	assert.Equal(t, model.OutcomeAvailable, p.Probe(filepath.Join(dir, "other.sock")).Outcome)
	assert.Equal(t, model.OutcomeAvailable, p.Probe(filepath.Join(dir, "missing", "x.sock")).Outcome)
}

// TestIdentifier checks the UNIX identifier is the path itself.
func TestIdentifier(t *testing.T) {
	assert.Equal(t, "/tmp/test.sock", Identifier("/tmp/test.sock"))
	assert.Equal(t, model.NetworkUnix, Network)
}
