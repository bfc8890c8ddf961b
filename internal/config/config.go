// Package config loads editor settings from config.toml, with an
// optional init.lua overlay applied on top.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type DocumentOptions struct {
	TabWidth    int  `toml:"tab-width"`
	UndoPeriod  int  `toml:"undo-period"` // seconds of inactivity before edits seal into one undo unit
	ReadOnly    bool `toml:"read-only"`
	LineNumbers bool `toml:"line-numbers"`
}

type Theme struct {
	Foreground            string `toml:"foreground"`
	Background            string `toml:"background"`
	StatuslineForeground  string `toml:"statusline-foreground"`
	StatuslineBackground  string `toml:"statusline-background"`
	LineNumberForeground  string `toml:"line-number-foreground"`
	SearchMatchForeground string `toml:"search-foreground"`
	SearchMatchBackground string `toml:"search-background"`
	SyntaxKeyword         string `toml:"syntax-keyword"`
	SyntaxString          string `toml:"syntax-string"`
	SyntaxComment         string `toml:"syntax-comment"`
	SyntaxType            string `toml:"syntax-type"`
	SyntaxFunction        string `toml:"syntax-function"`
	SyntaxNumber          string `toml:"syntax-number"`
	SyntaxConstant        string `toml:"syntax-constant"`
	SyntaxOperator        string `toml:"syntax-operator"`
	SyntaxPunctuation     string `toml:"syntax-punctuation"`
	SyntaxVariable        string `toml:"syntax-variable"`
	SyntaxField           string `toml:"syntax-field"`
}

type Config struct {
	Document DocumentOptions `toml:"document"`
	Theme    Theme           `toml:"theme"`
}

func Default() Config {
	return Config{
		Document: DocumentOptions{
			TabWidth:    4,
			UndoPeriod:  10,
			LineNumbers: true,
		},
		Theme: Theme{
			Foreground:            "#B3B1AD",
			Background:            "#0A0E14",
			StatuslineForeground:  "#B3B1AD",
			StatuslineBackground:  "#0F1419",
			LineNumberForeground:  "#3E4B59",
			SearchMatchForeground: "#000000",
			SearchMatchBackground: "#FFD700",
			SyntaxKeyword:         "#FFA759",
			SyntaxString:          "#BAE67E",
			SyntaxComment:         "#5C6773",
			SyntaxType:            "#5CCFE6",
			SyntaxFunction:        "#FFD173",
			SyntaxNumber:          "#D4BFFF",
			SyntaxConstant:        "#FFDD8E",
			SyntaxOperator:        "#F29668",
			SyntaxPunctuation:     "#C0C0C0",
			SyntaxVariable:        "#B3B1AD",
			SyntaxField:           "#E6B673",
		},
	}
}

// Load reads config.toml from the config directory, merges it over the
// defaults, then applies init.lua if present. A missing config file is
// not an error.
func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		var userCfg Config
		md, err := toml.Decode(string(data), &userCfg)
		if err != nil {
			return cfg, err
		}
		merge(&cfg, userCfg, md)
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	dir, err := ConfigDir()
	if err != nil {
		return cfg, err
	}
	luaPath := filepath.Join(dir, "init.lua")
	if _, err := os.Stat(luaPath); err == nil {
		if err := applyLua(&cfg, luaPath); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// merge overlays explicitly set user values onto dst. Booleans use the
// decoder metadata for presence, since a zero bool cannot be told
// apart from an omitted key.
func merge(dst *Config, src Config, md toml.MetaData) {
	if src.Document.TabWidth > 0 {
		dst.Document.TabWidth = src.Document.TabWidth
	}
	if src.Document.UndoPeriod > 0 {
		dst.Document.UndoPeriod = src.Document.UndoPeriod
	}
	if md.IsDefined("document", "read-only") {
		dst.Document.ReadOnly = src.Document.ReadOnly
	}
	if md.IsDefined("document", "line-numbers") {
		dst.Document.LineNumbers = src.Document.LineNumbers
	}
	mergeTheme(&dst.Theme, src.Theme)
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.LineNumberForeground != "" {
		dst.LineNumberForeground = src.LineNumberForeground
	}
	if src.SearchMatchForeground != "" {
		dst.SearchMatchForeground = src.SearchMatchForeground
	}
	if src.SearchMatchBackground != "" {
		dst.SearchMatchBackground = src.SearchMatchBackground
	}
	if src.SyntaxKeyword != "" {
		dst.SyntaxKeyword = src.SyntaxKeyword
	}
	if src.SyntaxString != "" {
		dst.SyntaxString = src.SyntaxString
	}
	if src.SyntaxComment != "" {
		dst.SyntaxComment = src.SyntaxComment
	}
	if src.SyntaxType != "" {
		dst.SyntaxType = src.SyntaxType
	}
	if src.SyntaxFunction != "" {
		dst.SyntaxFunction = src.SyntaxFunction
	}
	if src.SyntaxNumber != "" {
		dst.SyntaxNumber = src.SyntaxNumber
	}
	if src.SyntaxConstant != "" {
		dst.SyntaxConstant = src.SyntaxConstant
	}
	if src.SyntaxOperator != "" {
		dst.SyntaxOperator = src.SyntaxOperator
	}
	if src.SyntaxPunctuation != "" {
		dst.SyntaxPunctuation = src.SyntaxPunctuation
	}
	if src.SyntaxVariable != "" {
		dst.SyntaxVariable = src.SyntaxVariable
	}
	if src.SyntaxField != "" {
		dst.SyntaxField = src.SyntaxField
	}
}

func ConfigDir() (string, error) {
	if v := os.Getenv("OKRA_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "okra"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "okra"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
