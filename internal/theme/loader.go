package theme

import (
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
)

// ThemeConfig represents the raw TOML theme configuration
type ThemeConfig struct {
	Name   string `toml:"name"`
	Colors struct {
		NodeNormal    string `toml:"node_normal"`
		NodeModified  string `toml:"node_modified"`
		NodeNew       string `toml:"node_new"`
		TreeGuide     string `toml:"tree_guide"`
		ContainerType string `toml:"container_type"`
		LeafType      string `toml:"leaf_type"`
		VarID         string `toml:"var_id"`
		DetailLabel   string `toml:"detail_label"`
		DetailValue   string `toml:"detail_value"`
		Path          string `toml:"path"`
		StatusMessage string `toml:"status_message"`
		StatusError   string `toml:"status_error"`
	} `toml:"colors"`
}

// getThemePaths returns the search paths for theme files
func getThemePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".config", "jsontree", "themes"),
		filepath.Join(home, ".local", "share", "jsontree", "themes"),
	}
}

func findThemeFile(themeName string, dirs []string) (string, error) {
	filename := themeName + ".toml"
	for _, dir := range dirs {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("theme file not found: %s", filename)
}

// LoadThemeFromFile loads a theme from a TOML file
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Errorf("failed to parse theme file: %w", err)
	}

	return configToTheme(config), nil
}

// LoadTheme loads a theme by name, searching standard theme directories
func LoadTheme(themeName string) (*Theme, error) {
	filePath, err := findThemeFile(themeName, getThemePaths())
	if err != nil {
		return nil, err
	}
	return LoadThemeFromFile(filePath)
}

// configToTheme converts a ThemeConfig to a Theme. Colors left out of the
// file keep their Tokyo Night value.
func configToTheme(config ThemeConfig) *Theme {
	theme := TokyoNight()
	c := config.Colors
	overrides := []struct {
		value string
		dst   *tcell.Color
	}{
		{c.NodeNormal, &theme.Colors.NodeNormal},
		{c.NodeModified, &theme.Colors.NodeModified},
		{c.NodeNew, &theme.Colors.NodeNew},
		{c.TreeGuide, &theme.Colors.TreeGuide},
		{c.ContainerType, &theme.Colors.ContainerType},
		{c.LeafType, &theme.Colors.LeafType},
		{c.VarID, &theme.Colors.VarID},
		{c.DetailLabel, &theme.Colors.DetailLabel},
		{c.DetailValue, &theme.Colors.DetailValue},
		{c.Path, &theme.Colors.Path},
		{c.StatusMessage, &theme.Colors.StatusMessage},
		{c.StatusError, &theme.Colors.StatusError},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.dst = ParseColor(o.value)
		}
	}

	if config.Name != "" {
		theme.Name = config.Name
	}
	return theme
}

// LoadThemeOrDefault loads a theme by name, or returns Tokyo Night if not found
func LoadThemeOrDefault(themeName string) *Theme {
	switch themeName {
	case "default":
		return Default()
	case "", "tokyo-night":
		return TokyoNight()
	}

	theme, err := LoadTheme(themeName)
	if err != nil {
		return TokyoNight()
	}
	return theme
}
