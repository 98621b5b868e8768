package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository indicates the directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// HeadInfo describes the checked out commit.
type HeadInfo struct {
	Hash string
	// Branch is empty for a detached HEAD.
	Branch string
	Dirty  bool
}

// Short returns the abbreviated hash, suffixed with "-dirty" for modified trees.
func (h HeadInfo) Short() string {
	s := h.Hash
	if len(s) > 12 {
		s = s[:12]
	}
	if h.Dirty && s != "" {
		s += "-dirty"
	}
	return s
}

// ReadHead inspects the repository containing dir. When checkDirty is set the
// worktree status is computed as well, which walks the whole tree.
func ReadHead(dir string, checkDirty bool) (HeadInfo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return HeadInfo{}, ErrNotRepository
		}
		return HeadInfo{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// unborn branch: no commits yet
			return HeadInfo{}, nil
		}
		return HeadInfo{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	info := HeadInfo{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}

	if checkDirty {
		wt, err := repo.Worktree()
		if err != nil {
			return info, fmt.Errorf("open worktree: %w", err)
		}
		status, err := wt.Status()
		if err != nil {
			return info, fmt.Errorf("worktree status: %w", err)
		}
		info.Dirty = !status.IsClean()
	}
	return info, nil
}

// Describe returns HeadInfo.Short for dir, or "" when dir is not a repository
// or cannot be read.
func Describe(dir string) string {
	info, err := ReadHead(dir, true)
	if err != nil {
		return ""
	}
	return info.Short()
}
