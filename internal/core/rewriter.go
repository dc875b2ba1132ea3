package core

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// SourceRewriter retargets repository definitions at a resolved codename.
// It only ever edits the suite token of enabled entries whose suite is a
// known release codename; everything else in a file stays byte-identical.
type SourceRewriter struct {
	Store ports.RepoConfigPort
}

func NewSourceRewriter(store ports.RepoConfigPort) SourceRewriter {
	return SourceRewriter{Store: store}
}

// Preview reports which entries a rewrite would change, without writing.
func (r SourceRewriter) Preview(target types.Codename, known types.Catalog) ([]types.PreviewChange, error) {
	files, err := r.Store.Load()
	if err != nil {
		return nil, err
	}
	var changes []types.PreviewChange
	for _, file := range files {
		for _, line := range file.Lines {
			if !qualifies(line, target, known) {
				continue
			}
			changes = append(changes, types.PreviewChange{
				Path: file.Path,
				From: line.Entry.Suite,
				To:   target,
				URI:  line.Entry.URI,
			})
		}
	}
	return changes, nil
}

// Rewrite applies the retarget to every loaded file. Files with no
// qualifying entry are not written at all. A per-file persist failure is
// logged and aggregated; the remaining files are still processed.
func (r SourceRewriter) Rewrite(target types.Codename, known types.Catalog) (types.RewriteReport, error) {
	files, err := r.Store.Load()
	if err != nil {
		return types.RewriteReport{}, err
	}
	report := types.RewriteReport{}
	for _, file := range files {
		changed := false
		for i, line := range file.Lines {
			if !qualifies(line, target, known) {
				continue
			}
			raw, ok := RewriteSuite(line, target)
			if !ok {
				continue
			}
			entry := *line.Entry
			entry.Suite = target
			file.Lines[i] = types.SourceLine{Raw: raw, Entry: &entry}
			changed = true
		}
		if !changed {
			continue
		}
		if err := r.Store.Save(file); err != nil {
			log.Error().Err(err).Str("path", file.Path).Msg("failed to persist rewritten sources file")
			report.Failed = append(report.Failed, file.Path)
			continue
		}
		report.Changed = append(report.Changed, file.Path)
	}
	if len(report.Failed) > 0 && len(report.Changed) == 0 {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to persist any rewritten sources file")
	}
	return report, nil
}

// qualifies applies the rewrite predicate: enabled entry, suite is a known
// release codename, suite differs from the target.
func qualifies(line types.SourceLine, target types.Codename, known types.Catalog) bool {
	entry := line.Entry
	if entry == nil || !entry.Enabled {
		return false
	}
	if entry.Suite == target {
		return false
	}
	return known.Contains(entry.Suite)
}
