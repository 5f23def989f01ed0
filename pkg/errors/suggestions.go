package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case CategoryReadOnly:
		return g.generateReadOnlySuggestions(affectedPath)
	case CategoryCrossDevice:
		return g.generateCrossDeviceSuggestions(affectedPath)
	case CategoryPath:
		return g.generatePathSuggestions(affectedPath)
	case CategoryContent:
		return g.generateContentSuggestions(affectedPath)
	case CategoryUnsupported:
		return g.generateUnsupportedSuggestions(affectedPath)
	case CategoryUnknown:
		return g.generateUnknownSuggestions(affectedPath)
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateContentSuggestions(path string) []string {
	suggestions := []string{
		"The file was modified after it was scanned and was left untouched",
		"Run the scan again once writers have finished",
	}

	if path != "" {
		suggestions = append(suggestions, "Compare the file by hand: "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) generateCrossDeviceSuggestions(path string) []string {
	suggestions := []string{
		"Hard links cannot span filesystems",
		"Use --action remove for duplicates on different devices",
		"Or scan each filesystem separately with --action hardlink",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check which device holds %s with 'df %s'", path, path))
	}

	return suggestions
}

func (g *suggestionGenerator) generatePathSuggestions(path string) []string {
	suggestions := []string{
		"The file may have been moved or deleted since the scan",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
	}

	suggestions = append(suggestions, "Run the scan again to refresh the duplicate list")

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Removing or replacing a file needs write permission on its directory",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	suggestions = append(suggestions, "Try running with appropriate permissions or as a privileged user")

	return suggestions
}

func (g *suggestionGenerator) generateReadOnlySuggestions(path string) []string {
	suggestions := []string{
		"The filesystem is mounted read-only",
	}

	if path != "" {
		suggestions = append(suggestions, "Check the mount options with 'findmnt -T "+path+"'")
	}

	suggestions = append(suggestions, "Remount it read-write or use --action none to only report")

	return suggestions
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Verify file and directory permissions",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) generateUnsupportedSuggestions(_ string) []string {
	return []string{
		"The server does not support this operation",
		"SFTP hard links need an OpenSSH server with the hardlink@openssh.com extension",
		"Use --action remove instead",
	}
}
