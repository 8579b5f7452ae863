package engine

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// LoadCommandFile reads a command stream. YAML and JSON files hold a list
// of entries; any other file is G-code with one original command per line.
func LoadCommandFile(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read command file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		cmds, err := DecodeCommands(bytes.NewReader(data))
		if err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "parse %s", path),
				"expected a list of {command, displayCommand, isOriginal, meta} entries")
		}
		return cmds, nil
	default:
		return ReadCommands(bytes.NewReader(data))
	}
}

// DecodeCommands decodes a YAML or JSON list of command entries.
func DecodeCommands(r io.Reader) ([]Command, error) {
	var cmds []Command
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cmds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode commands")
	}
	return cmds, nil
}

// ReadCommands reads G-code text as original entries, one per non-blank
// line.
func ReadCommands(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmds = append(cmds, Original(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read commands")
	}
	return cmds, nil
}
