package core

import (
	"strings"
	"unicode"

	"avular-upgrade/internal/types"
)

// ParseSourceFile splits content into ordered lines, recognizing one-line
// apt source definitions (including commented-out ones) and keeping
// everything else verbatim. Joining the raw lines back reproduces the
// original bytes.
func ParseSourceFile(path string, content []byte) types.SourceFile {
	raw := strings.Split(string(content), "\n")
	file := types.SourceFile{Path: path, Lines: make([]types.SourceLine, 0, len(raw))}
	for _, line := range raw {
		file.Lines = append(file.Lines, types.SourceLine{
			Raw:   line,
			Entry: parseEntry(line),
		})
	}
	return file
}

// FormatSourceFile joins the raw lines. Untouched files round-trip
// byte-identically.
func FormatSourceFile(file types.SourceFile) []byte {
	raws := make([]string, len(file.Lines))
	for i, line := range file.Lines {
		raws[i] = line.Raw
	}
	return []byte(strings.Join(raws, "\n"))
}

// RewriteSuite replaces the suite token of an entry line with target,
// leaving every other byte of the line untouched. It returns the new raw
// line and false when the line carries no rewritable entry.
func RewriteSuite(line types.SourceLine, target types.Codename) (string, bool) {
	if line.Entry == nil {
		return line.Raw, false
	}
	start, end, ok := suiteSpan(line.Raw)
	if !ok {
		return line.Raw, false
	}
	return line.Raw[:start] + string(target) + line.Raw[end:], true
}

func parseEntry(raw string) *types.RepoEntry {
	trimmed := strings.TrimSpace(raw)
	enabled := true
	if strings.HasPrefix(trimmed, "#") {
		enabled = false
		trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 3 {
		return nil
	}
	kind := types.EntryKind(fields[0])
	if kind != types.EntryKindBinary && kind != types.EntryKindSource {
		return nil
	}
	idx := 1
	options := ""
	if strings.HasPrefix(fields[idx], "[") {
		var optFields []string
		for idx < len(fields) {
			optFields = append(optFields, fields[idx])
			closed := strings.HasSuffix(fields[idx], "]")
			idx++
			if closed {
				break
			}
		}
		options = strings.Join(optFields, " ")
		if !strings.HasSuffix(options, "]") {
			return nil
		}
	}
	if len(fields) < idx+2 {
		return nil
	}
	return &types.RepoEntry{
		Kind:       kind,
		Options:    options,
		URI:        fields[idx],
		Suite:      types.Codename(fields[idx+1]),
		Components: fields[idx+2:],
		Enabled:    enabled,
	}
}

type token struct {
	start int
	end   int
}

// suiteSpan locates the byte span of the suite field within a source line,
// skipping the comment marker, the type tag, any bracketed options, and
// the URI. Replacing exactly this span keeps every other byte intact.
func suiteSpan(raw string) (int, int, bool) {
	tokens := tokenize(raw)
	idx := 0
	if idx < len(tokens) && raw[tokens[idx].start:tokens[idx].end] == "#" {
		idx++
	} else if idx < len(tokens) && strings.HasPrefix(raw[tokens[idx].start:tokens[idx].end], "#") {
		// comment marker glued to the type tag, e.g. "#deb"
		tokens[idx].start += strings.LastIndex(raw[tokens[idx].start:tokens[idx].end], "#") + 1
	}
	if idx >= len(tokens) {
		return 0, 0, false
	}
	idx++ // type tag
	if idx < len(tokens) && strings.HasPrefix(raw[tokens[idx].start:], "[") {
		for idx < len(tokens) {
			closed := strings.HasSuffix(raw[tokens[idx].start:tokens[idx].end], "]")
			idx++
			if closed {
				break
			}
		}
	}
	idx++ // URI
	if idx >= len(tokens) {
		return 0, 0, false
	}
	return tokens[idx].start, tokens[idx].end, true
}

// tokenize splits on the same whitespace predicate strings.Fields uses,
// so the spans line up with the fields parseEntry saw.
func tokenize(raw string) []token {
	var tokens []token
	inToken := false
	start := 0
	for i, r := range raw {
		space := unicode.IsSpace(r)
		if !space && !inToken {
			inToken = true
			start = i
		}
		if space && inToken {
			inToken = false
			tokens = append(tokens, token{start: start, end: i})
		}
	}
	if inToken {
		tokens = append(tokens, token{start: start, end: len(raw)})
	}
	return tokens
}
