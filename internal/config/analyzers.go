// analyzers.go — реестр ассистентов анализатора из YAML-файла.
//
// Формат файла:
//
//	analyzers:
//	  - name: "Kontrola popisu"
//	    id: asst_abc123
//	  - name: "Kontrola názvu"
//	    id: asst_def456
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Analyzer — ассистент анализатора, доступный для выбора.
type Analyzer struct {
	// Name — отображаемое имя
	Name string `yaml:"name" json:"name"`
	// ID — идентификатор ассистента во внешнем API
	ID string `yaml:"id" json:"id"`
}

// analyzersFile — корневой элемент YAML-файла реестра.
type analyzersFile struct {
	Analyzers []Analyzer `yaml:"analyzers"`
}

// LoadAnalyzers читает и валидирует реестр ассистентов.
func LoadAnalyzers(path string) ([]Analyzer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение файла реестра: %w", err)
	}
	return ParseAnalyzers(data)
}

// ParseAnalyzers разбирает YAML реестра ассистентов.
// Имена и идентификаторы обязательны и не должны повторяться.
func ParseAnalyzers(data []byte) ([]Analyzer, error) {
	var f analyzersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("разбор YAML реестра: %w", err)
	}

	seenNames := make(map[string]bool, len(f.Analyzers))
	seenIDs := make(map[string]bool, len(f.Analyzers))
	for i, a := range f.Analyzers {
		if a.Name == "" || a.ID == "" {
			return nil, fmt.Errorf("ассистент #%d: name и id обязательны", i+1)
		}
		if seenNames[a.Name] {
			return nil, fmt.Errorf("ассистент #%d: повторяющееся имя %q", i+1, a.Name)
		}
		if seenIDs[a.ID] {
			return nil, fmt.Errorf("ассистент #%d: повторяющийся id %q", i+1, a.ID)
		}
		seenNames[a.Name] = true
		seenIDs[a.ID] = true
	}
	return f.Analyzers, nil
}
