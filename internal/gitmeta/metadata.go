package gitmeta

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Metadata identifies the exact tree state a scan ran against.
type Metadata struct {
	BranchName     *string `json:"branch,omitempty"`
	CommitHash     *string `json:"commit,omitempty"`
	Subfolder      string  `json:"subfolder,omitempty"`
	RepoRootFolder string  `json:"repo_root,omitempty"`
}

// Collect gathers repository metadata for the given source folder: branch
// name, commit hash and the scanned subfolder relative to the repository
// root. A folder outside any git repository returns nil metadata, not an
// error; the report simply omits the repository section.
func Collect(sourceFolder string) (*Metadata, error) {
	if sourceFolder == "" {
		return nil, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	repoRootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return nil, nil
	}

	md := &Metadata{
		RepoRootFolder: filepath.Clean(repoRootFolder),
	}

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(repoRootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	return md, nil
}

// findGitRepositoryPath walks up from folder looking for a .git directory.
func findGitRepositoryPath(folder string) (string, error) {
	current := folder
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no git repository found above %q", folder)
		}
		current = parent
	}
}
