package callable

import "strings"

// cleandoc normalizes a doc text the way authors write it in indented
// raw string literals: the first line is trimmed left, the common
// leading whitespace of all later non-empty lines is removed, and
// leading and trailing blank lines are dropped.
func cleandoc(doc string) string {
	lines := strings.Split(doc, "\n")

	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " \t")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " \t")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// deriveDocDesc fills description and documentation from the doc text
// when they were not given explicitly. The description is the leading
// run of non-empty doc lines collapsed into a single line; the
// documentation is everything after the first blank line, with line
// breaks preserved. A doc consisting only of a description yields no
// documentation.
func deriveDocDesc(doc, description, documentation string) (string, string) {
	doclines := strings.Split(cleandoc(doc), "\n")

	if description == "" {
		var lead []string
		for len(doclines) > 0 && doclines[0] != "" {
			// consume until the first empty line
			lead = append(lead, doclines[0])
			doclines = doclines[1:]
		}
		// this removes line breaks
		description = strings.Join(lead, " ")
	}

	// remove preceding empty lines
	for len(doclines) > 0 && doclines[0] == "" {
		doclines = doclines[1:]
	}

	if documentation == "" && len(doclines) > 0 {
		documentation = strings.Join(doclines, "\n")
	}

	return description, documentation
}
