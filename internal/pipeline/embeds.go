package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Reference definition: [label]: <target> or [label]: target.
	refDefinitionPattern = regexp.MustCompile(`(?m)^\s{0,3}\[([^\]]+)\]:\s*(?:<([^>\r\n]+)>|(\S+))`)

	// Inline image: ![alt](target "title").
	inlineImagePattern = regexp.MustCompile(`!\[[^\]]*]\(([^)\r\n]+)\)`)

	// Full or collapsed reference image: ![alt][label] or ![alt][].
	fullRefImagePattern = regexp.MustCompile(`!\[([^\]]*)]\[([^\]]*)]`)

	// Shortcut reference image candidate: ![label]. The character after the
	// match is checked by hand since Go regexp has no lookahead.
	shortcutImagePattern = regexp.MustCompile(`!\[([^\]]+)]`)
)

// normalizeLabel folds a reference label for case-insensitive lookup.
func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// referenceTargets maps normalized reference labels to their targets.
// The first definition of a label wins.
func referenceTargets(markdown string) map[string]string {
	refs := make(map[string]string)
	for _, m := range refDefinitionPattern.FindAllStringSubmatch(markdown, -1) {
		label := normalizeLabel(m[1])
		if label == "" {
			continue
		}
		if _, seen := refs[label]; seen {
			continue
		}
		target := m[2]
		if target == "" {
			target = m[3]
		}
		refs[label] = strings.TrimSpace(target)
	}
	return refs
}

// inlineTarget extracts the destination of an inline image, dropping an
// optional title and unwrapping <...>.
func inlineTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") {
		if end := strings.IndexByte(raw, '>'); end > 0 {
			return strings.TrimSpace(raw[1:end])
		}
	}
	if fields := strings.Fields(raw); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// imageTargets collects the destinations of every image in markdown.
// Reference images with no matching definition yield an empty target.
func imageTargets(markdown string) []string {
	refs := referenceTargets(markdown)
	var targets []string

	for _, m := range inlineImagePattern.FindAllStringSubmatch(markdown, -1) {
		targets = append(targets, inlineTarget(m[1]))
	}

	for _, m := range fullRefImagePattern.FindAllStringSubmatch(markdown, -1) {
		label := m[2]
		if strings.TrimSpace(label) == "" {
			label = m[1]
		}
		targets = append(targets, refs[normalizeLabel(label)])
	}

	for _, loc := range shortcutImagePattern.FindAllStringSubmatchIndex(markdown, -1) {
		if end := loc[1]; end < len(markdown) && (markdown[end] == '[' || markdown[end] == '(') {
			continue
		}
		targets = append(targets, refs[normalizeLabel(markdown[loc[2]:loc[3]])])
	}

	return targets
}

// IsRemoteOrDataURL reports whether target is an absolute http(s) URL or a data URI.
func IsRemoteOrDataURL(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "http://") ||
		strings.HasPrefix(t, "https://") ||
		strings.HasPrefix(t, "data:")
}

// ShouldObserveEmbeds reports whether rendering markdown needs a minimum
// observation window before the DOM can be considered settled.
//
// Without image syntax no window is needed. Image syntax whose targets cannot
// be extracted, or any target that is empty or local-looking, needs a window:
// such images may be resolved asynchronously by the host's embed mechanism.
func ShouldObserveEmbeds(markdown string) bool {
	if !strings.Contains(markdown, "![") {
		return false
	}
	targets := imageTargets(markdown)
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if t == "" || !IsRemoteOrDataURL(t) {
			return true
		}
	}
	return false
}
