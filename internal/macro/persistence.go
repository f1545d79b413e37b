package macro

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/wex/internal/variable"
)

// DefaultFilename is the name of the store file in the config directory.
const DefaultFilename = "macros.xml"

// document is the persisted form of a Store:
//
//	<macros>
//	  <macro name="a"><command>1</command><command>dd</command></macro>
//	  <variable name="author" type="INPUT-SAVE">Jane</variable>
//	  <abbreviation name="teh">the</abbreviation>
//	</macros>
type document struct {
	XMLName       xml.Name           `xml:"macros"`
	Macros        []macroNode        `xml:"macro"`
	Variables     []variable.Node    `xml:"variable"`
	Abbreviations []abbreviationNode `xml:"abbreviation"`
}

type macroNode struct {
	Name     string   `xml:"name,attr"`
	Commands []string `xml:"command"`
}

type abbreviationNode struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// Load replaces the store contents with the file at path. A missing file
// leaves the store empty. Duplicate names are reported and the first
// occurrence is kept. A recording in progress is not affected.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read macros file: %w", err)
	}

	var doc document
	if len(data) > 0 {
		if err := xml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse macros file %s: %w", path, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = path
	s.reset()

	for _, m := range doc.Macros {
		if _, ok := s.macros[m.Name]; ok {
			s.logger.Warn("macro %s: %v", m.Name, ErrDuplicate)
			continue
		}
		commands := make([]string, 0, len(m.Commands))
		for _, c := range m.Commands {
			commands = append(commands, Decode(c))
		}
		s.macros[m.Name] = commands
	}

	for _, n := range doc.Variables {
		if _, ok := s.variables[n.Name]; ok {
			s.logger.Warn("variable %s: %v", n.Name, ErrDuplicate)
			continue
		}
		v, err := variable.FromNode(n)
		if err != nil {
			s.logger.Warn("variable %s: %v", n.Name, err)
			continue
		}
		node := n
		s.variables[n.Name] = v
		s.nodes[n.Name] = &node
	}

	for _, a := range doc.Abbreviations {
		if _, ok := s.abbreviations[a.Name]; ok {
			s.logger.Warn("abbreviation %s: %v", a.Name, ErrDuplicate)
			continue
		}
		s.abbreviations[a.Name] = a.Text
	}

	s.modified = false
	s.logger.Debug("loaded %s: %d macros, %d variables, %d abbreviations",
		path, len(s.macros), len(s.variables), len(s.abbreviations))
	return nil
}

// Reload reads the store file again.
func (s *Store) Reload() error {
	path := s.Path()
	if path == "" {
		return nil
	}
	return s.Load(path)
}

// Save writes the store to its file atomically using a temporary file and
// rename.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	data, err := xml.MarshalIndent(s.document(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal macros: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	for _, v := range s.variables {
		v.ClearModified()
	}
	s.modified = false
	return nil
}

func (s *Store) document() document {
	var doc document

	for _, name := range sortedKeys(s.macros) {
		commands := s.macros[name]
		if len(commands) == 0 {
			continue
		}
		m := macroNode{Name: name, Commands: make([]string, len(commands))}
		for i, c := range commands {
			m.Commands[i] = Encode(c)
		}
		doc.Macros = append(doc.Macros, m)
	}

	for _, name := range sortedKeys(s.variables) {
		node, ok := s.nodes[name]
		if !ok {
			n := s.variables[name].Node()
			node = &n
		}
		doc.Variables = append(doc.Variables, *node)
	}

	for _, name := range sortedKeys(s.abbreviations) {
		doc.Abbreviations = append(doc.Abbreviations, abbreviationNode{
			Name: name,
			Text: s.abbreviations[name],
		})
	}
	return doc
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
