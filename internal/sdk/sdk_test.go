package sdk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/report"
	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

func TestEnsureClonesWhenAbsent(t *testing.T) {
	preservePATH(t)
	upstreamDir, _ := initUpstream(t, "stable")

	rec := &report.Recorder{}
	m := newTestManager(t, rec, upstreamDir)

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))

	require.FileExists(t, filepath.Join(m.root, "README.md"))

	repo, err := git.PlainOpen(m.root)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	require.Equal(t, plumbing.NewBranchReferenceName("stable"), head.Name())

	require.True(t, rec.Has("success", "Flutter installed"))

	profile, err := os.ReadFile(m.profilePath)
	require.NoError(t, err)
	require.Contains(t, string(profile), filepath.Join(m.root, "bin"))
	require.Contains(t, os.Getenv("PATH"), filepath.Join(m.root, "bin"))
}

func TestEnsureDryRunTouchesNothing(t *testing.T) {
	preservePATH(t)
	upstreamDir, _ := initUpstream(t, "stable")

	rec := &report.Recorder{}
	m := newTestManager(t, rec, upstreamDir)

	cfg, err := config.New(config.Options{ProjectName: "demo", Platforms: []string{"ios"}, DryRun: true})
	require.NoError(t, err)

	require.NoError(t, m.Ensure(context.Background(), cfg))
	require.NoDirExists(t, m.root)
	require.NoFileExists(t, m.profilePath)
	require.True(t, rec.Has("dry", "Flutter SDK"))
}

func TestEnsureReplacesNonGitDirectory(t *testing.T) {
	preservePATH(t)
	upstreamDir, _ := initUpstream(t, "stable")

	rec := &report.Recorder{}
	m := newTestManager(t, rec, upstreamDir)

	require.NoError(t, os.MkdirAll(m.root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(m.root, "stray.txt"), []byte("junk"), 0o644))

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))
	require.NoFileExists(t, filepath.Join(m.root, "stray.txt"))
	require.FileExists(t, filepath.Join(m.root, "README.md"))
}

func TestEnsureFastForwardsExistingCheckout(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	rec := &report.Recorder{}
	m := newTestManager(t, rec, upstreamDir)
	cfg := sdkConfig(t, "stable", config.UpdateReset)

	require.NoError(t, m.Ensure(context.Background(), cfg))

	upstreamHead := commitFile(t, upstream, upstreamDir, "update.txt", "new release", "second")

	require.NoError(t, m.Ensure(context.Background(), cfg))
	require.FileExists(t, filepath.Join(m.root, "update.txt"))
	require.Equal(t, upstreamHead, headHash(t, m.root))
	require.True(t, rec.Has("success", "Flutter updated (fast-forward)"))
}

func TestEnsureSkipLeavesDivergedCheckout(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	m := newTestManager(t, &report.Recorder{}, upstreamDir)
	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))

	commitFile(t, upstream, upstreamDir, "upstream.txt", "remote work", "remote change")

	local, err := git.PlainOpen(m.root)
	require.NoError(t, err)
	localHead := commitFile(t, local, m.root, "local.txt", "local work", "local change")

	rec := &report.Recorder{}
	m.rep = rec

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateSkip)))
	require.Equal(t, localHead, headHash(t, m.root))
	require.NoFileExists(t, filepath.Join(m.root, "upstream.txt"))
	require.True(t, rec.Has("warn", "diverged"))
}

func TestEnsureResetMatchesDivergedCheckoutToRemote(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	m := newTestManager(t, &report.Recorder{}, upstreamDir)
	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))

	upstreamHead := commitFile(t, upstream, upstreamDir, "upstream.txt", "remote work", "remote change")

	local, err := git.PlainOpen(m.root)
	require.NoError(t, err)
	commitFile(t, local, m.root, "local.txt", "local work", "local change")

	rec := &report.Recorder{}
	m.rep = rec

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))
	require.Equal(t, upstreamHead, headHash(t, m.root))
	require.FileExists(t, filepath.Join(m.root, "upstream.txt"))
	require.NoFileExists(t, filepath.Join(m.root, "local.txt"))
	require.True(t, rec.Has("success", "Flutter reset to origin"))
	require.True(t, rec.Has("info", "local ahead by 1, origin ahead by 1"))
}

func TestEnsureSwitchesChannelWithTrackingBranch(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	m := newTestManager(t, &report.Recorder{}, upstreamDir)
	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))

	wt, err := upstream.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("beta"),
		Create: true,
	}))
	commitFile(t, upstream, upstreamDir, "beta.txt", "beta only", "beta change")

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "beta", config.UpdateReset)))

	repo, err := git.PlainOpen(m.root)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	require.Equal(t, plumbing.NewBranchReferenceName("beta"), head.Name())
	require.FileExists(t, filepath.Join(m.root, "beta.txt"))
}

func TestEnsureRecloneReplacesCheckout(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	m := newTestManager(t, &report.Recorder{}, upstreamDir)
	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset)))

	require.NoError(t, os.WriteFile(filepath.Join(m.root, "scratch.txt"), []byte("junk"), 0o644))
	upstreamHead := commitFile(t, upstream, upstreamDir, "update.txt", "new release", "second")

	rec := &report.Recorder{}
	m.rep = rec

	require.NoError(t, m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReclone)))
	require.NoFileExists(t, filepath.Join(m.root, "scratch.txt"))
	require.FileExists(t, filepath.Join(m.root, "update.txt"))
	require.Equal(t, upstreamHead, headHash(t, m.root))
	require.True(t, rec.Has("info", "recloning Flutter (stable)"))
}

func TestEnsureCloneFailureIsInstallationError(t *testing.T) {
	preservePATH(t)

	rec := &report.Recorder{}
	m := newTestManager(t, rec, filepath.Join(t.TempDir(), "missing-upstream"))

	err := m.Ensure(context.Background(), sdkConfig(t, "stable", config.UpdateReset))
	require.Error(t, err)

	var installErr *kiterrors.InstallationError
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, "clone", installErr.Op)
}

func TestProfileLineWrittenOnce(t *testing.T) {
	preservePATH(t)
	upstreamDir, _ := initUpstream(t, "stable")

	m := newTestManager(t, &report.Recorder{}, upstreamDir)
	require.NoError(t, os.WriteFile(m.profilePath, []byte("# shell init\n"), 0o600))

	cfg := sdkConfig(t, "stable", config.UpdateReset)
	require.NoError(t, m.Ensure(context.Background(), cfg))
	require.NoError(t, m.Ensure(context.Background(), cfg))

	data, err := os.ReadFile(m.profilePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# shell init")
	require.Equal(t, 1, strings.Count(string(data), "export PATH="))

	info, err := os.Stat(m.profilePath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDoctorSurfacesAndroidLicenseGuidance(t *testing.T) {
	preservePATH(t)
	upstreamDir, upstream := initUpstream(t, "stable")

	doctorScript := "#!/bin/sh\necho \"Some Android licenses not accepted\" >&2\nexit 1\n"
	binDir := filepath.Join(upstreamDir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "flutter"), []byte(doctorScript), 0o755))

	wt, err := upstream.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("bin/flutter")
	require.NoError(t, err)
	_, err = wt.Commit("add flutter shim", commitOptions())
	require.NoError(t, err)

	rec := &report.Recorder{}
	m := newTestManager(t, rec, upstreamDir)

	cfg, err := config.New(config.Options{ProjectName: "demo", Platforms: []string{"android"}})
	require.NoError(t, err)

	require.NoError(t, m.Ensure(context.Background(), cfg))
	require.True(t, rec.Has("warn", "Flutter doctor found issues"))
	require.True(t, rec.Has("info", "flutter doctor --android-licenses"))
}

func newTestManager(t *testing.T, rep report.Reporter, upstreamURL string) *Manager {
	t.Helper()

	runner := &execx.Runner{Stdout: io.Discard, Stderr: io.Discard}
	m := NewManager(runner, rep, nil)
	m.root = filepath.Join(t.TempDir(), "flutter")
	m.profilePath = filepath.Join(t.TempDir(), ".zprofile")
	m.upstreamURL = upstreamURL
	m.cloneDepth = 0
	return m
}

func sdkConfig(t *testing.T, channel, mode string) *config.Config {
	t.Helper()

	cfg, err := config.New(config.Options{
		ProjectName: "demo",
		Platforms:   []string{"ios"},
		Channel:     channel,
		UpdateMode:  mode,
	})
	require.NoError(t, err)
	return cfg
}

func preservePATH(t *testing.T) {
	t.Helper()

	original := os.Getenv("PATH")
	t.Cleanup(func() { _ = os.Setenv("PATH", original) })
}

func initUpstream(t *testing.T, channel string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "README.md", "Flutter SDK fixture", "initial")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(channel),
		Create: true,
	}))

	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, contents, message string) plumbing.Hash {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit(message, commitOptions())
	require.NoError(t, err)
	return hash
}

func commitOptions() *git.CommitOptions {
	return &git.CommitOptions{
		Author: &object.Signature{
			Name:  "flutterkit",
			Email: "flutterkit@example.com",
			When:  time.Now(),
		},
	}
}

func headHash(t *testing.T, dir string) plumbing.Hash {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	return head.Hash()
}
