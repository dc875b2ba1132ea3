package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"avular-upgrade/internal/types"
)

// fakeStore keeps source files in memory and can fail saves per path.
type fakeStore struct {
	files       map[string]string
	failSave    map[string]bool
	saved       []string
	snapshotErr error
	snapshots   int
	restores    int
}

func newFakeStore(files map[string]string) *fakeStore {
	return &fakeStore{files: files, failSave: map[string]bool{}}
}

func (s *fakeStore) Load() ([]types.SourceFile, error) {
	var out []types.SourceFile
	for _, path := range sortedKeys(s.files) {
		out = append(out, ParseSourceFile(path, []byte(s.files[path])))
	}
	return out, nil
}

func (s *fakeStore) Save(file types.SourceFile) error {
	if s.failSave[file.Path] {
		return errors.New("disk full")
	}
	s.files[file.Path] = string(FormatSourceFile(file))
	s.saved = append(s.saved, file.Path)
	return nil
}

func (s *fakeStore) Snapshot(context.Context) (types.Backup, error) {
	if s.snapshotErr != nil {
		return types.Backup{}, s.snapshotErr
	}
	s.snapshots++
	return types.Backup{ID: "fake", Dir: "/backups/fake", RootCopied: true}, nil
}

func (s *fakeStore) Restore(context.Context, types.Backup) error {
	s.restores++
	return nil
}

func sortedKeys(m map[string]string) []string {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

var knownReleases = catalog(types.CatalogSourceReleaseFeed, "trixie", "bookworm", "bullseye")

func TestRewriteRetargetsQualifyingEntries(t *testing.T) {
	store := newFakeStore(map[string]string{
		"sources.list": "deb http://deb.debian.org/debian bookworm main\n# deb http://x bookworm main\n",
		"extra.list":   "deb http://packages.avular.com/debian bullseye avular\n",
	})
	report, err := NewSourceRewriter(store).Rewrite("trixie", knownReleases)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"sources.list", "extra.list"}, report.Changed)
	require.Empty(t, report.Failed)
	require.Equal(t, "deb http://deb.debian.org/debian trixie main\n# deb http://x bookworm main\n", store.files["sources.list"])
	require.Equal(t, "deb http://packages.avular.com/debian trixie avular\n", store.files["extra.list"])
}

func TestRewriteIsIdempotent(t *testing.T) {
	store := newFakeStore(map[string]string{
		"sources.list": "deb http://deb.debian.org/debian bookworm main\n",
	})
	rewriter := NewSourceRewriter(store)

	_, err := rewriter.Rewrite("trixie", knownReleases)
	require.NoError(t, err)
	first := store.files["sources.list"]
	store.saved = nil

	report, err := rewriter.Rewrite("trixie", knownReleases)
	require.NoError(t, err)
	require.Empty(t, report.Changed)
	require.Empty(t, store.saved, "second run must not touch any file")
	require.Equal(t, first, store.files["sources.list"])
}

func TestRewriteSkipsUnknownAndForeignSuites(t *testing.T) {
	content := "deb http://vendor.example/debian bookworm-extra main\ndeb http://other.example/ubuntu jammy main\n"
	store := newFakeStore(map[string]string{"sources.list": content})

	report, err := NewSourceRewriter(store).Rewrite("trixie", knownReleases)
	require.NoError(t, err)
	require.Empty(t, report.Changed)
	require.Equal(t, content, store.files["sources.list"])
}

func TestRewriteAggregatesPerFileFailures(t *testing.T) {
	store := newFakeStore(map[string]string{
		"a.list": "deb http://deb.debian.org/debian bookworm main\n",
		"b.list": "deb http://deb.debian.org/debian bookworm main\n",
	})
	store.failSave["a.list"] = true

	report, err := NewSourceRewriter(store).Rewrite("trixie", knownReleases)
	require.NoError(t, err, "partial success is still success")
	require.Equal(t, []string{"a.list"}, report.Failed)
	require.Equal(t, []string{"b.list"}, report.Changed)
}

func TestRewriteFailsWhenNothingPersists(t *testing.T) {
	store := newFakeStore(map[string]string{
		"a.list": "deb http://deb.debian.org/debian bookworm main\n",
	})
	store.failSave["a.list"] = true

	report, err := NewSourceRewriter(store).Rewrite("trixie", knownReleases)
	require.Error(t, err)
	require.Equal(t, []string{"a.list"}, report.Failed)
}

func TestPreviewReportsWithoutWriting(t *testing.T) {
	store := newFakeStore(map[string]string{
		"sources.list": "deb http://deb.debian.org/debian bookworm main\n",
	})
	changes, err := NewSourceRewriter(store).Preview("trixie", knownReleases)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, types.Codename("bookworm"), changes[0].From)
	require.Equal(t, types.Codename("trixie"), changes[0].To)
	require.Empty(t, store.saved)
}
