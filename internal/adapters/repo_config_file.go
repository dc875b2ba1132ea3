package adapters

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"avular-upgrade/internal/core"
	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

const backupManifestName = "backup.yaml"
const backupDropInName = "sources.list.d"

// RepoConfigFileAdapter stores repository definitions as the root sources
// file plus a drop-in directory, with timestamp-named backups under
// BackupRoot. Backups are never deleted automatically.
type RepoConfigFileAdapter struct {
	RootFile   string
	DropInDir  string
	BackupRoot string
	Clock      func() time.Time
}

func NewRepoConfigFileAdapter(rootFile string, dropInDir string, backupRoot string) RepoConfigFileAdapter {
	return RepoConfigFileAdapter{
		RootFile:   rootFile,
		DropInDir:  dropInDir,
		BackupRoot: backupRoot,
		Clock:      time.Now,
	}
}

func (a RepoConfigFileAdapter) Load() ([]types.SourceFile, error) {
	content, err := os.ReadFile(a.RootFile)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read root sources file").
			WithCause(err)
	}
	files := []types.SourceFile{core.ParseSourceFile(a.RootFile, content)}
	for _, path := range a.dropInFiles() {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable drop-in sources file")
			continue
		}
		files = append(files, core.ParseSourceFile(path, content))
	}
	return files, nil
}

// Save replaces one sources file atomically: the new content is written to
// a temp file in the same directory and moved over the original, so a
// crash mid-write cannot leave a half-written file.
func (a RepoConfigFileAdapter) Save(file types.SourceFile) error {
	return atomicWrite(file.Path, core.FormatSourceFile(file))
}

func (a RepoConfigFileAdapter) Snapshot(ctx context.Context) (types.Backup, error) {
	if err := ctx.Err(); err != nil {
		return types.Backup{}, err
	}
	now := a.clock()
	backup := types.Backup{
		ID:        now.UTC().Format("20060102-150405"),
		CreatedAt: now.UTC(),
	}
	backup.Dir = filepath.Join(a.BackupRoot, backup.ID)
	if err := os.MkdirAll(filepath.Join(backup.Dir, backupDropInName), 0o750); err != nil {
		return types.Backup{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create backup directory").
			WithCause(err)
	}

	// root file copy failure is fatal: rollback is impossible without it
	if err := copyFile(a.RootFile, filepath.Join(backup.Dir, filepath.Base(a.RootFile))); err != nil {
		return types.Backup{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to back up root sources file").
			WithCause(err)
	}
	backup.RootCopied = true

	for _, path := range a.dropInFiles() {
		dest := filepath.Join(backup.Dir, backupDropInName, filepath.Base(path))
		if err := copyFile(path, dest); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("drop-in file not backed up")
			backup.DropInFailures = append(backup.DropInFailures, path)
		}
	}

	if err := a.writeManifest(backup); err != nil {
		log.Warn().Err(err).Str("backup", backup.Dir).Msg("backup manifest not written")
	}
	log.Info().Str("backup", backup.Dir).Msg("repository configuration backed up")
	return backup, nil
}

// Restore is best-effort: a root file failure is reported but the drop-in
// set is still restored. It only ever touches the configured repository
// locations and never invokes the package manager.
func (a RepoConfigFileAdapter) Restore(ctx context.Context, backup types.Backup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rootErr error
	rootSrc := filepath.Join(backup.Dir, filepath.Base(a.RootFile))
	content, err := os.ReadFile(rootSrc)
	if err == nil {
		rootErr = atomicWrite(a.RootFile, content)
	} else {
		rootErr = err
	}
	if rootErr != nil {
		log.Error().Err(rootErr).Str("backup", backup.Dir).Msg("root sources file not restored")
	}

	// clear current drop-ins first so files added after the snapshot do
	// not survive as stale duplicates
	for _, path := range a.dropInFiles() {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("stale drop-in file not removed")
		}
	}
	backupDropIns, _ := filepath.Glob(filepath.Join(backup.Dir, backupDropInName, "*.list"))
	sort.Strings(backupDropIns)
	if err := os.MkdirAll(a.DropInDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", a.DropInDir).Msg("drop-in directory not recreated")
	}
	for _, src := range backupDropIns {
		if err := copyFile(src, filepath.Join(a.DropInDir, filepath.Base(src))); err != nil {
			log.Warn().Err(err).Str("path", src).Msg("drop-in file not restored")
		}
	}

	if rootErr != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to restore root sources file").
			WithCause(rootErr)
	}
	log.Info().Str("backup", backup.Dir).Msg("repository configuration restored")
	return nil
}

func (a RepoConfigFileAdapter) dropInFiles() []string {
	paths, err := filepath.Glob(filepath.Join(a.DropInDir, "*.list"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	return paths
}

func (a RepoConfigFileAdapter) writeManifest(backup types.Backup) error {
	data, err := yaml.Marshal(backup)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(backup.Dir, backupManifestName), data, 0o640)
}

func (a RepoConfigFileAdapter) clock() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock()
}

func atomicWrite(path string, content []byte) error {
	// keep the mode of the file being replaced; new files get the default
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp file").
			WithCause(err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write temp file").
			WithCause(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set temp file mode").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close temp file").
			WithCause(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace file").
			WithCause(err)
	}
	return nil
}

func copyFile(src string, dest string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, content, info.Mode().Perm())
}

var _ ports.RepoConfigPort = RepoConfigFileAdapter{}
