package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dedkola/tk-docs-template/internal/models"
)

const delimiter = "---"

var errUnterminated = errors.New("front matter block is not terminated")

// dateLayouts are tried in order for publishedAt and updatedAt strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// frontMatter is the decoded metadata block. Values stay untyped because tags
// and keywords may be either a list or a comma-separated string.
type frontMatter map[string]any

// splitFrontMatter separates a leading "---" delimited block from the body.
// found reports whether the source opened a block at all. When the block is
// never closed, the whole source is returned as body together with an error.
func splitFrontMatter(src string) (meta, body string, found bool, err error) {
	src = normalizeSource(src)

	first, rest, _ := strings.Cut(src, "\n")
	if !isDelimiter(first) {
		return "", src, false, nil
	}
	offset := 0
	for offset <= len(rest) {
		line, _, more := strings.Cut(rest[offset:], "\n")
		if isDelimiter(line) {
			return rest[:offset], rest[offset+len(line):], true, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", src, true, errUnterminated
}

// normalizeSource drops a byte order mark and converts CRLF line endings.
func normalizeSource(src string) string {
	src = strings.TrimPrefix(src, "\ufeff")
	return strings.ReplaceAll(src, "\r\n", "\n")
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == delimiter
}

func parseFrontMatter(meta string) (frontMatter, error) {
	fm := frontMatter{}
	if strings.TrimSpace(meta) == "" {
		return fm, nil
	}
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, nil
}

// apply copies recognized keys onto doc. Fields that fail to parse keep their
// defaults; the failures are returned joined.
func (fm frontMatter) apply(doc *models.Document) error {
	var errs []error

	title, err := scalar(fm["title"])
	if err != nil {
		errs = append(errs, fmt.Errorf("title: %w", err))
	} else if title != "" {
		doc.Title = title
	}

	desc, err := scalar(fm["description"])
	if err != nil {
		errs = append(errs, fmt.Errorf("description: %w", err))
	} else {
		doc.Description = desc
	}

	doc.Tags = stringSet(fm["tags"])
	doc.Keywords = stringSet(fm["keywords"])

	if t, ok, err := date(fm["publishedAt"]); err != nil {
		errs = append(errs, fmt.Errorf("publishedAt: %w", err))
	} else if ok {
		doc.PublishedAt = &t
	}
	if t, ok, err := date(fm["updatedAt"]); err != nil {
		errs = append(errs, fmt.Errorf("updatedAt: %w", err))
	} else if ok {
		doc.UpdatedAt = t
	}
	return errors.Join(errs...)
}

// scalar renders a single YAML value as text with one layer of surrounding
// quotes removed.
func scalar(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return trimQuotes(strings.TrimSpace(s)), nil
	case time.Time:
		return s.Format(time.RFC3339), nil
	case []any, map[string]any:
		return "", fmt.Errorf("expected a string, got %T", v)
	default:
		return fmt.Sprint(s), nil
	}
}

func trimQuotes(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `'`) {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, `'`) {
		s = s[:len(s)-1]
	}
	return s
}

// stringSet normalizes a list or comma-separated string into trimmed,
// de-duplicated entries in first-seen order.
func stringSet(v any) []string {
	var raw []string
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		for _, item := range s {
			if item == nil {
				continue
			}
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = s
	case string:
		raw = strings.Split(s, ",")
	default:
		raw = strings.Split(fmt.Sprint(s), ",")
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func date(v any) (time.Time, bool, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return d.UTC(), true, nil
	case string:
		d = trimQuotes(strings.TrimSpace(d))
		if d == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC(), true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", d)
	default:
		return time.Time{}, false, fmt.Errorf("unrecognized date %v", v)
	}
}
