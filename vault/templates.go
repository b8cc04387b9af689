package vault

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FolderTemplate is a themed set of folders defined in YAML, for
// example:
//
//	name: Travel
//	folders:
//	  - name: Flights
//	    color: "#3366cc"
//	    icon: plane
//	  - name: Hotels
//	    color: "#cc6633"
type FolderTemplate struct {
	Name    string           `yaml:"name"`
	Folders []TemplateFolder `yaml:"folders"`
}

// TemplateFolder is one folder inside a template.
type TemplateFolder struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

// ParseFolderTemplate decodes a YAML template definition.
func ParseFolderTemplate(src []byte) (FolderTemplate, error) {
	var tpl FolderTemplate
	if err := yaml.Unmarshal(src, &tpl); err != nil {
		return FolderTemplate{}, fmt.Errorf("parsing folder template: %w", err)
	}

	if tpl.Name == "" {
		return FolderTemplate{}, fmt.Errorf("folder template has no name")
	}

	if len(tpl.Folders) == 0 {
		return FolderTemplate{}, fmt.Errorf("folder template %q defines no folders", tpl.Name)
	}

	for _, f := range tpl.Folders {
		if f.Name == "" {
			return FolderTemplate{}, fmt.Errorf("folder template %q contains a folder with no name", tpl.Name)
		}

		if IsPermanentFolderName(f.Name) {
			return FolderTemplate{}, fmt.Errorf("folder template %q uses reserved name %q", tpl.Name, f.Name)
		}
	}

	return tpl, nil
}

// ApplyTemplate creates the template's folders, skipping any whose
// exact name already exists so re-applying a template never creates
// duplicates. Created folders are marked as template folders.
func (e *Engine) ApplyTemplate(ctx context.Context, tpl FolderTemplate) (BatchResult, error) {
	var result BatchResult

	for _, spec := range tpl.Folders {
		e.mu.Lock()
		_, exists := e.folders.ByName(spec.Name)
		e.mu.Unlock()

		if exists {
			result.skip(spec.Name, fmt.Errorf("folder %q already exists", spec.Name))
			continue
		}

		record, err := e.remote.CreateFolder(ctx, FolderRecord{
			Name:             spec.Name,
			Color:            spec.Color,
			Icon:             spec.Icon,
			Description:      spec.Description,
			IsTemplateFolder: true,
		})
		if err != nil {
			return result, fmt.Errorf("creating template folder %q: %w", spec.Name, err)
		}

		e.mu.Lock()
		e.folders.Put(record.Folder())
		e.mu.Unlock()

		result.Done++
	}

	return result, nil
}
