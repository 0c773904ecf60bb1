package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GenerateExampleConfig creates an example configuration with helpful comments
func GenerateExampleConfig(libraryFolder string) ([]byte, error) {
	exampleConfig := Default()
	exampleConfig.Library.Folder = libraryFolder

	// Encode to YAML node for comment manipulation
	var node yaml.Node
	if err := node.Encode(exampleConfig); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	// Add helpful comments
	addConfigComments(&node)

	// Marshal with comments preserved
	result, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return result, nil
}

// addConfigComments adds helpful comments to the configuration structure
func addConfigComments(node *yaml.Node) {
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return
	}

	// Add header comment to the root mapping
	node.HeadComment = "blenderctl configuration\nBuilds are downloaded into per-branch subfolders of library.folder"

	// Add comments to each section
	for i := 0; i < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		switch keyNode.Value {
		case "library":
			valueNode.HeadComment = "Local build library (required)"
		case "scrape":
			valueNode.HeadComment = "Remote sources to poll for new builds"
		case "updates":
			valueNode.HeadComment = "Update offers: behavior is one of major/minor/patch.\nSet advanced: true to configure each branch separately"
		case "self_update":
			valueNode.HeadComment = "Updates for blenderctl itself (optional)"
		}
	}
}
