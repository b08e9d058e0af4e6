package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
)

// Parser evaluates Lua configuration files.
type Parser struct {
	detector abi.Detector
}

// NewParser creates a parser. When detector is non-nil its Profile is
// exposed to config code as the read-only "abi" table.
func NewParser(detector abi.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ParseError) Unwrap() error {
	return ErrConfiguration
}

// ParseFile reads and evaluates a config file, starting from base.
func (p *Parser) ParseFile(ctx context.Context, path string, base Config) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return Config{}, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	return p.ParseString(ctx, string(data), base)
}

// ParseString evaluates Lua config code, starting from base. Fields the code
// does not set keep their value from base.
func (p *Parser) ParseString(ctx context.Context, luaCode string, base Config) (Config, error) {
	if len(luaCode) > MaxConfigSize {
		return Config{}, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		profile, err := p.detector.Detect(ctx)
		if err != nil {
			return Config{}, fmt.Errorf("abi detection failed: %w", err)
		}
		abi.InjectTable(L, profile)
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return Config{}, fmt.Errorf("config evaluation cancelled: %w", ctx.Err())
		}
		return Config{}, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L, From(base).Build())
}

// extractConfig reads the global libinstall table over cfg.
func extractConfig(L *lua.LState, cfg Config) (Config, error) {
	root := L.GetGlobal(luaGlobalLibinstall)
	if root.Type() != lua.LTTable {
		return Config{}, &ParseError{
			Message: "missing or invalid 'libinstall' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)

	var err error
	if cfg.ConfigPath, err = optString(table, luaFieldConfigPath, cfg.ConfigPath); err != nil {
		return Config{}, err
	}
	if cfg.CacheDir, err = optString(table, luaFieldCacheDir, cfg.CacheDir); err != nil {
		return Config{}, err
	}

	if owner, ok := table.RawGetString(luaFieldOwner).(*lua.LTable); ok {
		if cfg.OwnerUID, err = optInt(owner, luaFieldUID, cfg.OwnerUID); err != nil {
			return Config{}, err
		}
		if cfg.OwnerGID, err = optInt(owner, luaFieldGID, cfg.OwnerGID); err != nil {
			return Config{}, err
		}
	}

	if labels, ok := table.RawGetString(luaFieldLabels).(*lua.LTable); ok {
		if cfg.LibLabel, err = optString(labels, luaFieldLib, cfg.LibLabel); err != nil {
			return Config{}, err
		}
		if cfg.FileLabel, err = optString(labels, luaFieldFile, cfg.FileLabel); err != nil {
			return Config{}, err
		}
	}

	switch helper := table.RawGetString(luaFieldHelper).(type) {
	case lua.LString:
		cfg.HelperName = string(helper)
	case *lua.LTable:
		if cfg.HelperName, err = optString(helper, luaFieldName, cfg.HelperName); err != nil {
			return Config{}, err
		}
		if cfg.HelperSHA256, err = optString(helper, luaFieldSHA256, cfg.HelperSHA256); err != nil {
			return Config{}, err
		}
		if cfg.HelperKeyring, err = optString(helper, luaFieldKeyring, cfg.HelperKeyring); err != nil {
			return Config{}, err
		}
	}

	if v := table.RawGetString(luaFieldElevated); v != lua.LNil {
		b, ok := v.(lua.LBool)
		if !ok {
			return Config{}, typeError(luaFieldElevated, "boolean", v)
		}
		cfg.Elevated = bool(b)
	}

	if v := table.RawGetString(luaFieldEscalation); v != lua.LNil {
		argv, err := stringList(luaFieldEscalation, v)
		if err != nil {
			return Config{}, err
		}
		cfg.Escalation = argv
	}

	if v := table.RawGetString(luaFieldTimeout); v != lua.LNil {
		n, ok := v.(lua.LNumber)
		if !ok {
			return Config{}, typeError(luaFieldTimeout, "number of seconds", v)
		}
		cfg.Timeout = time.Duration(float64(n) * float64(time.Second))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

func optString(t *lua.LTable, field, current string) (string, error) {
	switch v := t.RawGetString(field).(type) {
	case *lua.LNilType:
		return current, nil
	case lua.LString:
		return string(v), nil
	default:
		return "", typeError(field, "string", v)
	}
}

func optInt(t *lua.LTable, field string, current int) (int, error) {
	switch v := t.RawGetString(field).(type) {
	case *lua.LNilType:
		return current, nil
	case lua.LNumber:
		if float64(v) != float64(int(v)) {
			return 0, typeError(field, "integer", v)
		}
		return int(v), nil
	default:
		return 0, typeError(field, "integer", v)
	}
}

// stringList reads an array of strings, skipping nils left by conditionals.
func stringList(field string, v lua.LValue) ([]string, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, typeError(field, "list of strings", v)
	}

	var out []string
	var err error
	t.ForEach(func(_, item lua.LValue) {
		if err != nil || item == lua.LNil {
			return
		}
		s, ok := item.(lua.LString)
		if !ok {
			err = typeError(field, "list of strings", item)
			return
		}
		out = append(out, string(s))
	})
	return out, err
}

func typeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid value for '%s'", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
