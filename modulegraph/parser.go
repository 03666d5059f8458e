/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package modulegraph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/squeezejs/squeeze/set"
)

// importFromRe matches `import <clause> from "<spec>"`, including
// multi-line clauses. The clause character class excludes quotes and
// semicolons so a clause can never swallow an unrelated statement.
var importFromRe = regexp.MustCompile(`(?s)import\s+([^'"` + "`" + `;]+?)\s+from\s+(['"` + "`" + `])([^'"` + "`" + `]+)\x02`)

// exportFromRe matches `export <clause> from "<spec>"`.
var exportFromRe = regexp.MustCompile(`(?s)export\s+([^'"` + "`" + `;]+?)\s*from\s+(['"` + "`" + `])([^'"` + "`" + `]+)\x02`)

// importSideEffectRe matches a bare `import "<spec>"` with no clause.
var importSideEffectRe = regexp.MustCompile(`import\s*(['"` + "`" + `])([^'"` + "`" + `]+)\x02`)

// dynamicRe matches require(...) and import(...) calls whose sole argument
// is a literal string; computed specifiers never match and are treated as
// external.
var dynamicRe = regexp.MustCompile(`(?:require|import)\s*\(\s*(['"` + "`" + `])([^'"` + "`" + `]+)\x02\s*\)`)

var (
	namedBraceRe = regexp.MustCompile(`\{([^}]*)\}`)
	namespaceRe  = regexp.MustCompile(`\*\s*as\s+([A-Za-z_$][\w$]*)`)
	leadingIdent = regexp.MustCompile(`^([A-Za-z_$][\w$]*)`)
	asAliasRe    = regexp.MustCompile(`\s+as\s+`)
)

func init() {
	// Go's regexp has no backreferences, so the quote-matching groups
	// above are written with a placeholder byte (\x02) and rewritten here
	// into three copies, one per quote character, then combined with |.
	importFromRe = compileQuoted(`(?s)import\s+([^'"` + "`" + `;]+?)\s+from\s+(QUOTE)([^QUOTE]+)QUOTE`)
	exportFromRe = compileQuoted(`(?s)export\s+([^'"` + "`" + `;]+?)\s*from\s+(QUOTE)([^QUOTE]+)QUOTE`)
	importSideEffectRe = compileQuoted(`import\s*(QUOTE)([^QUOTE]+)QUOTE`)
	dynamicRe = compileQuoted(`(?:require|import)\s*\(\s*(QUOTE)([^QUOTE]+)QUOTE\s*\)`)
}

// compileQuoted expands a pattern containing the literal token "QUOTE"
// into an alternation over the three JS string delimiters (', ", `),
// since RE2 supports no backreferences to enforce a matching close quote.
func compileQuoted(pattern string) *regexp.Regexp {
	alts := make([]string, 0, 3)
	for _, q := range []string{`'`, `"`, "`"} {
		alts = append(alts, strings.ReplaceAll(strings.ReplaceAll(pattern, "QUOTE", q), "[^QUOTE]", "[^"+q+"]"))
	}
	return regexp.MustCompile("(?:" + strings.Join(alts, ")|(?:") + ")")
}

// NamedPair is one entry of a named-import clause, retaining both the
// original exported name and any local "as" alias. ImportRecord discards
// Alias (downstream graph/aggregation components only ever care about the
// original name); Occurrence keeps it so the rewriter in package rewrite
// can re-add it at the call site per the alias-preservation design note.
type NamedPair struct {
	Original string
	Alias    string // "" when no "as" clause was present
}

// Kind classifies which of §4.2's four statement forms an Occurrence was
// matched from. The rewriter needs this distinction even though the parser
// itself treats all four uniformly for closure/aggregation purposes: an
// ImportFrom/ExportFrom occurrence's span covers the whole
// "import ... from '...'" clause and can be replaced wholesale, while a
// Dynamic occurrence's span covers only the quoted argument inside a
// require(...)/import(...) call and must be replaced in place.
type Kind int

const (
	KindImportFrom Kind = iota
	KindExportFrom
	KindSideEffect
	KindDynamic
)

// Occurrence is one parsed import/export/require/dynamic-import expression
// together with its byte offsets [Start,End) in the original source, for
// callers (the rewriter) that need to splice in a replacement statement.
type Occurrence struct {
	Start           int
	End             int
	Kind            Kind
	Specifier       string
	DefaultImport   string
	NamespaceImport string
	Named           []NamedPair
	SideEffectOnly  bool
}

// NamedOriginals returns the original (pre-alias) names of o.Named.
func (o Occurrence) NamedOriginals() []string {
	if len(o.Named) == 0 {
		return nil
	}
	out := make([]string, len(o.Named))
	for i, p := range o.Named {
		out[i] = p.Original
	}
	return out
}

// ParseImports extracts every import/export-from/require/dynamic-import
// expression from source, in document order. It is tolerant by
// construction: anything it cannot confidently classify is simply omitted,
// never reported as an error. Specifiers written inside comments or inside
// string and template literals are ignored.
func ParseImports(source string) []ImportRecord {
	occs := ParseOccurrences(source)
	records := make([]ImportRecord, len(occs))
	for i, o := range occs {
		records[i] = ImportRecord{
			Specifier:       o.Specifier,
			DefaultImport:   o.DefaultImport,
			NamespaceImport: o.NamespaceImport,
			NamedImports:    o.NamedOriginals(),
			SideEffectOnly:  o.SideEffectOnly,
		}
	}
	return records
}

// ParseOccurrences is ParseImports's span-preserving sibling: it retains
// each match's source offsets and named-import aliases so package rewrite
// can replace exactly the matched statement text while still being able to
// re-bind an "as" alias at the call site.
func ParseOccurrences(source string) []Occurrence {
	cleaned := stripComments(source)

	var occs []Occurrence
	fromSpecifiers := set.NewSet[string]()

	for _, m := range importFromRe.FindAllStringSubmatchIndex(cleaned, -1) {
		clause, _, ok := extractClauseAndSpec(cleaned, m)
		if !ok {
			continue
		}
		_, spec, _ := extractClauseAndSpec(source, m)
		def, ns, named := parseClause(clause)
		fromSpecifiers.Add(spec)
		occs = append(occs, Occurrence{
			Start: m[0], End: m[1],
			Kind:            KindImportFrom,
			Specifier:       spec,
			DefaultImport:   def,
			NamespaceImport: ns,
			Named:           named,
		})
	}

	for _, m := range exportFromRe.FindAllStringSubmatchIndex(cleaned, -1) {
		clause, _, ok := extractClauseAndSpec(cleaned, m)
		if !ok {
			continue
		}
		_, spec, _ := extractClauseAndSpec(source, m)
		def, ns, named := parseClause(clause)
		occ := Occurrence{
			Start: m[0], End: m[1],
			Kind:            KindExportFrom,
			Specifier:       spec,
			DefaultImport:   def,
			NamespaceImport: ns,
			Named:           named,
		}
		if def == "" && ns == "" && len(named) == 0 {
			// `export * from "spec"` with no "as" binds nothing locally;
			// still contributes a closure edge.
			occ.SideEffectOnly = true
		}
		occs = append(occs, occ)
	}

	for _, m := range importSideEffectRe.FindAllStringSubmatchIndex(cleaned, -1) {
		spec, ok := extractSpec(source, m)
		if !ok {
			continue
		}
		if fromSpecifiers.Has(spec) {
			continue
		}
		occs = append(occs, Occurrence{Start: m[0], End: m[1], Kind: KindSideEffect, Specifier: spec, SideEffectOnly: true})
	}

	for _, m := range dynamicRe.FindAllStringSubmatchIndex(cleaned, -1) {
		specStart, specEnd, spec, ok := extractSpecSpan(source, m)
		if !ok {
			continue
		}
		occs = append(occs, Occurrence{Start: specStart, End: specEnd, Kind: KindDynamic, Specifier: spec, SideEffectOnly: true})
	}

	sort.SliceStable(occs, func(i, j int) bool { return occs[i].Start < occs[j].Start })
	return occs
}

// extractClauseAndSpec pulls the clause and specifier capture groups out of
// a FindAllStringSubmatchIndex result for the 3-alternative quoted
// patterns: exactly one of the three alternatives' three capture groups
// (clause, quote, spec) is populated (non -1).
func extractClauseAndSpec(src string, m []int) (clause, spec string, ok bool) {
	groups := m[2:]
	// groups come in triples per alternative: clause, quote, spec
	for i := 0; i+6 <= len(groups); i += 6 {
		clauseStart, clauseEnd := groups[i], groups[i+1]
		specStart, specEnd := groups[i+4], groups[i+5]
		if clauseStart == -1 || specStart == -1 {
			continue
		}
		return src[clauseStart:clauseEnd], src[specStart:specEnd], true
	}
	return "", "", false
}

// extractSpec pulls the single specifier capture group out of a
// FindAllStringSubmatchIndex result for the 3-alternative quoted patterns:
// (quote, spec) pairs per alternative.
func extractSpec(src string, m []int) (string, bool) {
	_, _, spec, ok := extractSpecSpan(src, m)
	return spec, ok
}

// extractSpecSpan is extractSpec plus the specifier's own [start,end) byte
// offsets (excluding the surrounding quote characters), for callers that
// need to splice a replacement in place without disturbing the quotes or
// the surrounding call syntax (dynamicRe's require(...)/import(...) forms).
func extractSpecSpan(src string, m []int) (start, end int, spec string, ok bool) {
	groups := m[2:]
	for i := 0; i+4 <= len(groups); i += 4 {
		specStart, specEnd := groups[i+2], groups[i+3]
		if specStart == -1 {
			continue
		}
		return specStart, specEnd, src[specStart:specEnd], true
	}
	return 0, 0, "", false
}

// parseClause splits an import/export clause into its default, namespace,
// and named-import components. The namespace binding itself (the "X" in
// "* as X") has no separate original name, so it is returned as-is; named
// imports retain both halves of an "as" alias via NamedPair.
func parseClause(clause string) (defaultImport, namespaceImport string, named []NamedPair) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", "", nil
	}

	if m := namedBraceRe.FindStringSubmatchIndex(clause); m != nil {
		named = parseNamedList(clause[m[2]:m[3]])
		clause = clause[:m[0]] + clause[m[1]:]
		clause = strings.TrimSpace(clause)
	}
	clause = strings.TrimSpace(strings.Trim(clause, ","))

	if clause == "" {
		return "", "", named
	}

	if m := namespaceRe.FindStringSubmatchIndex(clause); m != nil {
		namespaceImport = clause[m[2]:m[3]]
		clause = clause[:m[0]] + clause[m[1]:]
		clause = strings.TrimSpace(strings.Trim(clause, ","))
	}

	if clause != "" {
		if m := leadingIdent.FindStringSubmatch(clause); m != nil {
			defaultImport = m[1]
		}
	}

	return defaultImport, namespaceImport, named
}

// parseNamedList splits the inner text of a `{ a, b as c }` clause into
// NamedPairs, preserving each entry's optional alias.
func parseNamedList(inner string) []NamedPair {
	parts := strings.Split(inner, ",")
	var pairs []NamedPair
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		original, alias := p, ""
		if loc := asAliasRe.FindStringIndex(p); loc != nil {
			original = strings.TrimSpace(p[:loc[0]])
			alias = strings.TrimSpace(p[loc[1]:])
		}
		if original != "" {
			pairs = append(pairs, NamedPair{Original: original, Alias: alias})
		}
	}
	return pairs
}

// stripComments blanks // line comments, /* */ block comments, and the
// bodies of string and template literals with spaces (keeping the quote
// characters, newlines, and byte length), so a specifier written inside a
// comment or inside a string is never seen by the import patterns above.
// Length preservation is load bearing: ParseOccurrences matches against
// this cleaned text but reads each specifier from the original source at
// the same offsets, and package rewrite splices replacements into the
// *original* source at those same offsets.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	n := len(src)
	i := 0
	for i < n {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			b.WriteByte(' ')
			b.WriteByte(' ')
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				if src[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
				i++
			}
			if i+1 < n {
				b.WriteByte(' ')
				b.WriteByte(' ')
				i += 2
			} else {
				for ; i < n; i++ {
					b.WriteByte(' ')
				}
			}
		case c == '\'' || c == '"' || c == '`':
			quote := c
			b.WriteByte(c)
			i++
			for i < n && src[i] != quote {
				if src[i] == '\\' && i+1 < n {
					b.WriteByte(' ')
					i++
				}
				if src[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
				i++
			}
			if i < n {
				b.WriteByte(src[i])
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
