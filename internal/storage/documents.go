package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dpshade/quick-hb/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	variablesFile = "variables.json"
	structureFile = "structure.yaml"
	draftFile     = "draft.yaml"
)

// VariablesData represents the JSON structure of the variables file
type VariablesData struct {
	Variables models.VariableMap `json:"variables"`
	Version   string             `json:"version"`
}

// LoadVariables loads the variable values entered so far
func (s *Storage) LoadVariables() (models.VariableMap, error) {
	path := filepath.Join(s.rootPath, variablesFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return models.VariableMap{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	var vd VariablesData
	if err := json.Unmarshal(data, &vd); err != nil {
		return nil, fmt.Errorf("failed to parse variables JSON: %w", err)
	}
	if vd.Variables == nil {
		vd.Variables = models.VariableMap{}
	}

	return vd.Variables, nil
}

// SaveVariables writes all variable values to disk
func (s *Storage) SaveVariables(vars models.VariableMap) error {
	data, err := json.MarshalIndent(VariablesData{Variables: vars, Version: "1.0"}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}
	return s.writeFile(variablesFile, data)
}

// structureData is the YAML layout of the structure file
type structureData struct {
	Sections models.Structure `yaml:"sections"`
}

// LoadStructure returns the user-edited structure, or nil if none was saved
func (s *Storage) LoadStructure() (models.Structure, error) {
	var sd structureData
	found, err := s.readYAML(structureFile, &sd)
	if err != nil || !found {
		return nil, err
	}
	return sd.Sections, nil
}

// SaveStructure stores the user-edited structure
func (s *Storage) SaveStructure(structure models.Structure) error {
	data, err := yaml.Marshal(structureData{Sections: structure})
	if err != nil {
		return fmt.Errorf("failed to marshal structure: %w", err)
	}
	return s.writeFile(structureFile, data)
}

// LoadDraft returns the saved record picks. A missing file yields an empty draft.
func (s *Storage) LoadDraft() (*models.Draft, error) {
	var d models.Draft
	if _, err := s.readYAML(draftFile, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDraft stores the record picks
func (s *Storage) SaveDraft(d *models.Draft) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return s.writeFile(draftFile, data)
}

func (s *Storage) readYAML(name string, out any) (bool, error) {
	path := filepath.Join(s.rootPath, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

func (s *Storage) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.rootPath, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
