// Package catalogue loads the local list of ranked maps
package catalogue

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/parser"
)

// DefaultLinkPrefix is prepended to a catalogue map id to build its link
const DefaultLinkPrefix = "https://steamcommunity.com/sharedfiles/filedetails/?id="

const fieldCount = 4

// Load reads the catalogue file at path. A missing or blank file yields an
// empty catalogue.
func Load(path, linkPrefix string) ([]models.MapEntry, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapError("catalogue.Load", models.ErrMalformedCatalogue, err, "reading %s", path)
	}
	return Parse(bytes.NewReader(content), linkPrefix)
}

// Parse decodes catalogue rows of name, maximum points, broken status and map id.
// Any undecodable row rejects the whole catalogue.
func Parse(r io.Reader, linkPrefix string) ([]models.MapEntry, error) {
	const op = "catalogue.Parse"

	if linkPrefix == "" {
		linkPrefix = DefaultLinkPrefix
	}

	var entries []models.MapEntry
	seen := make(map[int64]int)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := splitRow(text)
		if len(fields) != fieldCount {
			return nil, models.NewError(op, models.ErrMalformedCatalogue,
				"line %d: expected %d fields, got %d", line, fieldCount, len(fields))
		}

		entry, err := parseEntry(fields, linkPrefix)
		if err != nil {
			return nil, models.WrapError(op, models.ErrMalformedCatalogue, err, "line %d", line)
		}
		if prev, ok := seen[entry.ID]; ok {
			return nil, models.NewError(op, models.ErrMalformedCatalogue,
				"line %d: map %d already listed on line %d", line, entry.ID, prev)
		}
		seen[entry.ID] = line
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, models.WrapError(op, models.ErrMalformedCatalogue, err, "reading rows")
	}

	return entries, nil
}

// splitRow splits a row from the right. Points, status and id never contain
// commas, so everything before them is the map name, commas and quotes
// included.
func splitRow(text string) []string {
	parts := strings.Split(text, ",")
	if len(parts) < fieldCount {
		return parts
	}
	n := len(parts) - (fieldCount - 1)
	name := unquote(strings.TrimSpace(strings.Join(parts[:n], ",")))
	return append([]string{name}, parts[n:]...)
}

// unquote strips CSV quoting from a name written as one quoted field, such as
// "Gamma, the remix". Any other quote is part of the name.
func unquote(name string) string {
	if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
		return name
	}
	inner := name[1 : len(name)-1]
	if strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`) {
		return name
	}
	return strings.ReplaceAll(inner, `""`, `"`)
}

func parseEntry(fields []string, linkPrefix string) (models.MapEntry, error) {
	maxPoints, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return models.MapEntry{}, err
	}
	if maxPoints < 0 {
		return models.MapEntry{}, errors.New("maximum points must not be negative")
	}

	status, err := models.ParseBrokenStatus(fields[2])
	if err != nil {
		return models.MapEntry{}, err
	}

	link := linkPrefix + strings.TrimSpace(fields[3])
	id, err := parser.LinkID(link)
	if err != nil {
		return models.MapEntry{}, err
	}

	return models.MapEntry{
		ID:            id,
		Link:          link,
		Name:          strings.TrimSpace(fields[0]),
		MaximumPoints: maxPoints,
		BrokenStatus:  status,
	}, nil
}
