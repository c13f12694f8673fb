// Package sdk keeps the Flutter SDK checkout installed, on the requested
// channel, and reachable on PATH.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/paths"
	"github.com/flutterkit/flutterkit/internal/report"
	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

const (
	flutterUpstreamURL   = "https://github.com/flutter/flutter.git"
	remoteName           = "origin"
	androidLicenseMarker = "Some Android licenses not accepted"
)

// Manager ensures the SDK checkout exists, tracks the requested channel and
// ends up on the shell's PATH. It is the only component that writes to the
// checkout directory.
type Manager struct {
	runner *execx.Runner
	rep    report.Reporter
	log    *logger.Logger

	root        string
	profilePath string
	upstreamURL string
	cloneDepth  int
}

// NewManager builds an SDK manager rooted at the default checkout location.
func NewManager(runner *execx.Runner, rep report.Reporter, log *logger.Logger) *Manager {
	if rep == nil {
		rep = report.Silent{}
	}
	return &Manager{
		runner:      runner,
		rep:         rep,
		log:         log,
		root:        paths.SDKRoot(),
		profilePath: paths.ShellProfile(),
		upstreamURL: flutterUpstreamURL,
		cloneDepth:  1,
	}
}

// Ensure brings the checkout to the requested channel according to the update
// policy, then configures PATH and runs the SDK's self check.
func (m *Manager) Ensure(ctx context.Context, cfg *config.Config) error {
	if cfg.DryRun {
		m.rep.Dry("would install or update the Flutter SDK")
		return nil
	}

	switch {
	case cfg.UpdateMode == config.UpdateReclone:
		if err := m.reclone(ctx, cfg); err != nil {
			return err
		}
	case !m.hasCheckout():
		if err := m.clone(ctx, cfg); err != nil {
			return err
		}
	default:
		if err := m.update(ctx, cfg); err != nil {
			return err
		}
	}

	m.configurePath()
	m.runDoctor(ctx, cfg)
	return nil
}

func (m *Manager) hasCheckout() bool {
	_, err := os.Stat(filepath.Join(m.root, ".git"))
	return err == nil
}

func (m *Manager) reclone(ctx context.Context, cfg *config.Config) error {
	m.rep.Info(fmt.Sprintf("recloning Flutter (%s)", cfg.Channel))

	if _, err := os.Stat(m.root); err == nil {
		if err := os.RemoveAll(m.root); err != nil {
			return kiterrors.NewInstallationError("reclone", "", err)
		}
	}
	return m.clone(ctx, cfg)
}

func (m *Manager) clone(ctx context.Context, cfg *config.Config) error {
	m.rep.Info(fmt.Sprintf("installing Flutter (%s)", cfg.Channel))

	if err := os.MkdirAll(filepath.Dir(m.root), 0o755); err != nil {
		return kiterrors.NewInstallationError("clone", "", err)
	}

	// A leftover directory that is not a git checkout cannot be cloned into.
	if _, err := os.Stat(m.root); err == nil && !m.hasCheckout() {
		if err := os.RemoveAll(m.root); err != nil {
			return kiterrors.NewInstallationError("clone", "", err)
		}
	}

	opts := &git.CloneOptions{
		URL:           m.upstreamURL,
		ReferenceName: plumbing.NewBranchReferenceName(cfg.Channel),
		SingleBranch:  true,
	}
	if m.cloneDepth > 0 {
		opts.Depth = m.cloneDepth
	}

	if _, err := git.PlainCloneContext(ctx, m.root, false, opts); err != nil {
		return kiterrors.NewInstallationError("clone", "", err)
	}

	m.rep.Success("Flutter installed")
	return nil
}

func (m *Manager) update(ctx context.Context, cfg *config.Config) error {
	m.rep.Info(fmt.Sprintf("updating Flutter (%s)", cfg.Channel))

	repo, err := git.PlainOpen(m.root)
	if err != nil {
		return kiterrors.NewInstallationError("open", "", err)
	}

	m.ensureRemote(repo)

	if err := m.fetch(ctx, repo, cfg.Channel); err != nil {
		return kiterrors.NewInstallationError("fetch", "", err)
	}

	if err := m.checkoutChannel(repo, cfg.Channel); err != nil {
		return err
	}

	diverged, err := m.fastForward(repo, cfg.Channel)
	if err != nil {
		return err
	}
	if diverged {
		return m.reconcile(repo, cfg)
	}
	return nil
}

// ensureRemote repoints origin at the upstream URL in case the checkout was
// cloned from somewhere else. Failures are ignored; fetch surfaces real
// problems.
func (m *Manager) ensureRemote(repo *git.Repository) {
	remote, err := repo.Remote(remoteName)
	if err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 && urls[0] == m.upstreamURL {
			return
		}
		if err := repo.DeleteRemote(remoteName); err != nil {
			return
		}
	}

	_, _ = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: remoteName,
		URLs: []string{m.upstreamURL},
	})
}

func (m *Manager) fetch(ctx context.Context, repo *git.Repository, channel string) error {
	spec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", channel, remoteName, channel))
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{spec},
		Prune:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (m *Manager) checkoutChannel(repo *git.Repository, channel string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return kiterrors.NewInstallationError("checkout", "", err)
	}

	branch := plumbing.NewBranchReferenceName(channel)
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch}); err == nil {
		return nil
	}

	// No local branch for the channel yet; create one from the remote ref.
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, channel), true)
	if err != nil {
		return kiterrors.NewInstallationError("checkout", "", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch, Hash: remoteRef.Hash(), Create: true}); err != nil {
		return kiterrors.NewInstallationError("checkout", "", err)
	}
	return nil
}

// fastForward reports whether local and remote history diverged. When the
// remote is strictly ahead it moves the local branch up to the remote tip.
func (m *Manager) fastForward(repo *git.Repository, channel string) (bool, error) {
	head, err := repo.Head()
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, channel), true)
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}

	if head.Hash() == remoteRef.Hash() {
		m.rep.Success("Flutter up to date")
		return false, nil
	}

	localCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}
	remoteCommit, err := repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}

	behind, err := localCommit.IsAncestor(remoteCommit)
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}
	if behind {
		wt, err := repo.Worktree()
		if err != nil {
			return false, kiterrors.NewInstallationError("merge", "", err)
		}
		if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
			return false, kiterrors.NewInstallationError("merge", "", err)
		}
		m.rep.Success("Flutter updated (fast-forward)")
		return false, nil
	}

	ahead, err := remoteCommit.IsAncestor(localCommit)
	if err != nil {
		return false, kiterrors.NewInstallationError("merge", "", err)
	}
	if ahead {
		m.rep.Success("Flutter up to date (local commits ahead of origin)")
		return false, nil
	}

	return true, nil
}

func (m *Manager) reconcile(repo *git.Repository, cfg *config.Config) error {
	if cfg.UpdateMode == config.UpdateSkip {
		m.rep.Warn("Flutter checkout has diverged from origin; skipping update")
		return nil
	}

	m.rep.Warn("Flutter checkout has diverged from origin")
	m.reportDivergence(repo, cfg.Channel)

	m.rep.Info("resetting Flutter to origin (discarding local changes)")
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, cfg.Channel), true)
	if err != nil {
		return kiterrors.NewInstallationError("reset", "", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return kiterrors.NewInstallationError("reset", "", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return kiterrors.NewInstallationError("reset", "", err)
	}

	m.rep.Success("Flutter reset to origin")
	return nil
}

// reportDivergence logs ahead/behind commit counts. Purely diagnostic, so
// every failure here is swallowed.
func (m *Manager) reportDivergence(repo *git.Repository, channel string) {
	head, err := repo.Head()
	if err != nil {
		return
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, channel), true)
	if err != nil {
		return
	}
	localCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return
	}
	remoteCommit, err := repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return
	}

	bases, err := localCommit.MergeBase(remoteCommit)
	if err != nil || len(bases) == 0 {
		return
	}
	base := bases[0]

	localAhead, err := countCommits(localCommit, base)
	if err != nil {
		return
	}
	originAhead, err := countCommits(remoteCommit, base)
	if err != nil {
		return
	}

	m.rep.Info(fmt.Sprintf("local ahead by %d, origin ahead by %d", localAhead, originAhead))
}

// countCommits counts commits reachable from tip but not from base.
func countCommits(tip, base *object.Commit) (int, error) {
	iter := object.NewCommitPreorderIter(tip, nil, []plumbing.Hash{base.Hash})
	defer iter.Close()

	count := 0
	err := iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// configurePath makes the SDK's bin directory available to future shells via
// the profile file and to the current process. PATH problems are warnings;
// the checkout itself is already usable.
func (m *Manager) configurePath() {
	m.rep.Info("configuring Flutter PATH")

	binDir := filepath.Join(m.root, "bin")
	line := fmt.Sprintf(`export PATH="%s:$PATH"`, binDir)
	if err := m.appendProfileLine(line); err != nil {
		m.rep.Warn(fmt.Sprintf("could not update %s: %v", filepath.Base(m.profilePath), err))
	}

	current := os.Getenv("PATH")
	if !strings.Contains(current, binDir) {
		_ = os.Setenv("PATH", binDir+string(os.PathListSeparator)+current)
	}
}

func (m *Manager) appendProfileLine(line string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(m.profilePath); err == nil {
		perm = info.Mode().Perm()
	}

	data, err := os.ReadFile(m.profilePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if strings.Contains(string(data), line) {
		m.rep.Success(fmt.Sprintf("Flutter PATH already in %s", filepath.Base(m.profilePath)))
		return nil
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"

	if err := writeFileAtomic(m.profilePath, []byte(content), perm); err != nil {
		return err
	}

	m.rep.Success(fmt.Sprintf("Flutter PATH added to %s", filepath.Base(m.profilePath)))
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".profile-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// runDoctor runs the SDK's self check. Doctor findings never fail the run.
func (m *Manager) runDoctor(ctx context.Context, cfg *config.Config) {
	m.rep.Info("running flutter doctor")

	flutterBin := filepath.Join(m.root, "bin", "flutter")
	res, err := m.runner.Capture(ctx, execx.Command{Name: flutterBin, Args: []string{"doctor", "-v"}})
	if err == nil {
		m.rep.Success("Flutter doctor passed")
		return
	}

	m.rep.Warn(fmt.Sprintf("Flutter doctor found issues: %v", err))
	if out := res.Primary(); out != "" {
		m.log.WithFields(map[string]any{"output": out}).Debug("flutter doctor output")
	}

	if cfg.HasPlatform("android") && mentionsAndroidLicenses(res) {
		m.rep.Info("run 'flutter doctor --android-licenses' to accept the Android licenses")
	}
}

func mentionsAndroidLicenses(res execx.Result) bool {
	return strings.Contains(res.Stdout, androidLicenseMarker) || strings.Contains(res.Stderr, androidLicenseMarker)
}
