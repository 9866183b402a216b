// Package bib implements the bibliography and citation scope: a per-pass
// ordered map of cited items, deferred citation markers, and a reference
// list. Citation database parsing is delegated to external collaborators:
// BibTeX files go through github.com/nickng/bibtex, YAML item lists through
// gopkg.in/yaml.v3.
package bib

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nickng/bibtex"
	"gopkg.in/yaml.v3"
)

// Item is one bibliography entry.
type Item struct {
	Key       string   `yaml:"key"`
	Type      string   `yaml:"type"`
	Title     string   `yaml:"title"`
	Authors   []string `yaml:"authors"`
	Year      int      `yaml:"year"`
	Container string   `yaml:"container"`
	URL       string   `yaml:"url"`
	DOI       string   `yaml:"doi"`
	// Extra keeps fields the canonical set does not model (publisher,
	// pages, edition).
	Extra map[string]string `yaml:"extra"`
}

// Database is a set of items addressable by citation key.
type Database struct {
	items map[string]Item
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{items: make(map[string]Item)}
}

// Add inserts or replaces an item. Later databases override earlier ones on
// key conflicts, mirroring how authors layer a personal .bib over a shared
// one.
func (db *Database) Add(it Item) error {
	if it.Key == "" {
		return fmt.Errorf("bibliography item with empty key (title %q)", it.Title)
	}
	db.items[it.Key] = it
	return nil
}

// Lookup returns the item for key.
func (db *Database) Lookup(key string) (Item, bool) {
	it, ok := db.items[key]
	return it, ok
}

// Len returns the number of items.
func (db *Database) Len() int { return len(db.items) }

// Merge copies all items from other into db, other winning conflicts.
func (db *Database) Merge(other *Database) {
	for k, v := range other.items {
		db.items[k] = v
	}
}

// LoadFiles loads and merges every referenced database. Relative paths are
// resolved against baseDir. The format follows the extension: .bib is
// BibTeX, .yaml/.yml is a YAML item list.
func LoadFiles(baseDir string, paths []string) (*Database, error) {
	db := NewDatabase()
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		var (
			part *Database
			err  error
		)
		switch ext := strings.ToLower(filepath.Ext(p)); ext {
		case ".bib":
			part, err = LoadBibTeX(p)
		case ".yaml", ".yml":
			part, err = LoadYAML(p)
		default:
			return nil, fmt.Errorf("bibliography %s: unsupported format %q", p, ext)
		}
		if err != nil {
			return nil, err
		}
		db.Merge(part)
	}
	return db, nil
}

// LoadYAML reads a YAML list of items.
func LoadYAML(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography %s: %w", path, err)
	}
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing bibliography %s: %w", path, err)
	}
	db := NewDatabase()
	for _, it := range items {
		if err := db.Add(it); err != nil {
			return nil, fmt.Errorf("bibliography %s: %w", path, err)
		}
	}
	return db, nil
}

// LoadBibTeX reads a BibTeX database through the external parser and maps
// its entries onto Items.
func LoadBibTeX(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := bibtex.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing bibliography %s: %w", path, err)
	}

	db := NewDatabase()
	for _, entry := range parsed.Entries {
		if err := db.Add(itemFromEntry(entry)); err != nil {
			return nil, fmt.Errorf("bibliography %s: %w", path, err)
		}
	}
	return db, nil
}

// canonical BibTeX fields; everything else lands in Extra.
var canonicalFields = map[string]bool{
	"author": true, "title": true, "year": true,
	"journal": true, "booktitle": true, "url": true, "doi": true,
}

func itemFromEntry(entry *bibtex.BibEntry) Item {
	it := Item{
		Key:  entry.CiteName,
		Type: entry.Type,
	}
	field := func(name string) string {
		if v, ok := entry.Fields[name]; ok && v != nil {
			return strings.TrimSpace(v.String())
		}
		return ""
	}
	it.Title = field("title")
	if authors := field("author"); authors != "" {
		for _, a := range strings.Split(authors, " and ") {
			it.Authors = append(it.Authors, normalizeAuthor(a))
		}
	}
	if y := field("year"); y != "" {
		it.Year, _ = strconv.Atoi(y)
	}
	it.Container = field("journal")
	if it.Container == "" {
		it.Container = field("booktitle")
	}
	it.URL = field("url")
	it.DOI = field("doi")
	for name, v := range entry.Fields {
		if canonicalFields[name] || v == nil {
			continue
		}
		if it.Extra == nil {
			it.Extra = make(map[string]string)
		}
		it.Extra[name] = strings.TrimSpace(v.String())
	}
	return it
}

// normalizeAuthor turns BibTeX "Last, First" into "First Last".
func normalizeAuthor(s string) string {
	s = strings.TrimSpace(s)
	if last, first, ok := strings.Cut(s, ","); ok {
		return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}
	return s
}
