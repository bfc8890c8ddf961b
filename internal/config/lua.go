package config

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// applyLua runs an init.lua script with an `okra` global table and
// folds any values it sets back into the config. The script sees the
// effective TOML-merged values, so it can both read and override them.
//
//	okra.document.tab_width = 2
//	okra.theme.syntax_keyword = "#FF8F40"
func applyLua(cfg *Config, path string) error {
	ls := lua.NewState()
	defer ls.Close()

	doc := ls.NewTable()
	ls.SetField(doc, "tab_width", lua.LNumber(cfg.Document.TabWidth))
	ls.SetField(doc, "undo_period", lua.LNumber(cfg.Document.UndoPeriod))
	ls.SetField(doc, "read_only", lua.LBool(cfg.Document.ReadOnly))
	ls.SetField(doc, "line_numbers", lua.LBool(cfg.Document.LineNumbers))

	theme := ls.NewTable()
	for name, value := range themeFields(&cfg.Theme) {
		ls.SetField(theme, name, lua.LString(*value))
	}

	root := ls.NewTable()
	ls.SetField(root, "document", doc)
	ls.SetField(root, "theme", theme)
	ls.SetGlobal("okra", root)

	if err := ls.DoFile(path); err != nil {
		return fmt.Errorf("init.lua: %w", err)
	}

	if n, ok := ls.GetField(doc, "tab_width").(lua.LNumber); ok && int(n) > 0 {
		cfg.Document.TabWidth = int(n)
	}
	if n, ok := ls.GetField(doc, "undo_period").(lua.LNumber); ok && int(n) > 0 {
		cfg.Document.UndoPeriod = int(n)
	}
	if b, ok := ls.GetField(doc, "read_only").(lua.LBool); ok {
		cfg.Document.ReadOnly = bool(b)
	}
	if b, ok := ls.GetField(doc, "line_numbers").(lua.LBool); ok {
		cfg.Document.LineNumbers = bool(b)
	}
	for name, value := range themeFields(&cfg.Theme) {
		if s, ok := ls.GetField(theme, name).(lua.LString); ok && string(s) != "" {
			*value = string(s)
		}
	}
	return nil
}

func themeFields(t *Theme) map[string]*string {
	return map[string]*string{
		"foreground":             &t.Foreground,
		"background":             &t.Background,
		"statusline_foreground":  &t.StatuslineForeground,
		"statusline_background":  &t.StatuslineBackground,
		"line_number_foreground": &t.LineNumberForeground,
		"search_foreground":      &t.SearchMatchForeground,
		"search_background":      &t.SearchMatchBackground,
		"syntax_keyword":         &t.SyntaxKeyword,
		"syntax_string":          &t.SyntaxString,
		"syntax_comment":         &t.SyntaxComment,
		"syntax_type":            &t.SyntaxType,
		"syntax_function":        &t.SyntaxFunction,
		"syntax_number":          &t.SyntaxNumber,
		"syntax_constant":        &t.SyntaxConstant,
		"syntax_operator":        &t.SyntaxOperator,
		"syntax_punctuation":     &t.SyntaxPunctuation,
		"syntax_variable":        &t.SyntaxVariable,
		"syntax_field":           &t.SyntaxField,
	}
}
