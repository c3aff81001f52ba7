package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"peerchat/crypto"
	"peerchat/message"
)

const (
	// AppDirectoryName is the per-user application data directory name.
	AppDirectoryName = "peerchat"
	// DefaultMsgLenLimit bounds message content length in characters.
	DefaultMsgLenLimit = 4096
	// DefaultHeaderLenLimit bounds the serialized message header length.
	DefaultHeaderLenLimit = 256
	// DefaultNickLenLimit bounds nickname length in characters.
	DefaultNickLenLimit = 64
	// DefaultSessionKeyLen is the session key length in bits.
	DefaultSessionKeyLen = 128
	// DefaultConnectionTimeoutMS is the socket timeout in milliseconds.
	DefaultConnectionTimeoutMS = 1000
	// DefaultPort is the listening port used when no user override exists.
	DefaultPort = 1337
	// settingsFileName is the persisted key/value settings file.
	settingsFileName = "settings.cfg"
)

// Settings contains the persistent tunables of the messenger. The message
// core consumes MsgLenLimit, HeaderLenLimit and SessionKeyLen as opaque
// bounds; everything else belongs to collaborator subsystems.
type Settings struct {
	OwnID               string
	Nickname            string
	MsgLenLimit         int
	HeaderLenLimit      int
	NickLenLimit        int
	SessionKeyLen       int
	ConnectionTimeoutMS int
	Port                int
	DatabasePath        string
	PrivateKeyPath      string
	PublicKeyPath       string
	Color               bool

	// Debug is a runtime-only flag and is never persisted.
	Debug bool
}

// Limits returns the validation bounds the message core consumes.
func (s *Settings) Limits() message.Limits {
	return message.Limits{
		MaxContentLen: s.MsgLenLimit,
		MaxHeaderLen:  s.HeaderLenLimit,
	}
}

// Validate checks the bounds the message core depends on.
func (s *Settings) Validate() error {
	if s.MsgLenLimit < 1 {
		return fmt.Errorf("msg_len_limit %d must be positive", s.MsgLenLimit)
	}
	if s.HeaderLenLimit < message.MinHeaderLen {
		return fmt.Errorf("header_len_limit %d below minimum %d", s.HeaderLenLimit, message.MinHeaderLen)
	}
	if !crypto.ValidSessionKeyBits(s.SessionKeyLen) {
		return fmt.Errorf("session_key_len %d must be one of 128, 192 or 256", s.SessionKeyLen)
	}
	if s.NickLenLimit < 1 {
		return fmt.Errorf("nick_len_limit %d must be positive", s.NickLenLimit)
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	return nil
}

// ResolveDataDir returns the OS-aware app data directory.
//
// If PEERCHAT_DATA_DIR is set, its value is used as an explicit override.
func ResolveDataDir() (string, error) {
	if override := os.Getenv("PEERCHAT_DATA_DIR"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, AppDirectoryName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppDirectoryName), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, AppDirectoryName), nil
	}
}

// SettingsPath returns the full path to settings.cfg for a data directory.
func SettingsPath(dataDir string) string {
	return filepath.Join(dataDir, settingsFileName)
}

// EnsureDataDirectories creates the app data directory layout if needed.
func EnsureDataDirectories(dataDir string) error {
	dirs := []string{
		dataDir,
		filepath.Join(dataDir, "keys"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	return nil
}

// Load reads and parses a key/value settings file from disk. Unknown keys
// are ignored so newer files stay readable by older builds.
func Load(path string) (*Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	defer file.Close()

	settings := &Settings{}
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("parse settings: line %d is not key=value", line)
		}

		if err := settings.apply(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("parse settings: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	return settings, nil
}

func (s *Settings) apply(key, value string) error {
	switch key {
	case "own_id":
		s.OwnID = value
	case "nickname":
		s.Nickname = value
	case "msg_len_limit":
		return applyInt(&s.MsgLenLimit, key, value)
	case "header_len_limit":
		return applyInt(&s.HeaderLenLimit, key, value)
	case "nick_len_limit":
		return applyInt(&s.NickLenLimit, key, value)
	case "session_key_len":
		return applyInt(&s.SessionKeyLen, key, value)
	case "connection_timeout_ms":
		return applyInt(&s.ConnectionTimeoutMS, key, value)
	case "port":
		return applyInt(&s.Port, key, value)
	case "database_path":
		s.DatabasePath = value
	case "private_key_path":
		s.PrivateKeyPath = value
	case "public_key_path":
		s.PublicKeyPath = value
	case "color":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		s.Color = parsed
	}
	return nil
}

func applyInt(target *int, key, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	*target = parsed
	return nil
}

// Save writes the settings to disk as sorted key=value lines.
func Save(path string, settings *Settings) error {
	entries := map[string]string{
		"own_id":                settings.OwnID,
		"nickname":              settings.Nickname,
		"msg_len_limit":         strconv.Itoa(settings.MsgLenLimit),
		"header_len_limit":      strconv.Itoa(settings.HeaderLenLimit),
		"nick_len_limit":        strconv.Itoa(settings.NickLenLimit),
		"session_key_len":       strconv.Itoa(settings.SessionKeyLen),
		"connection_timeout_ms": strconv.Itoa(settings.ConnectionTimeoutMS),
		"port":                  strconv.Itoa(settings.Port),
		"database_path":         settings.DatabasePath,
		"private_key_path":      settings.PrivateKeyPath,
		"public_key_path":       settings.PublicKeyPath,
		"color":                 strconv.FormatBool(settings.Color),
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("# peerchat settings\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(entries[key])
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// LoadOrCreate ensures directories and settings exist, then returns both the
// settings and the file path they live at.
func LoadOrCreate() (*Settings, string, error) {
	dataDir, err := ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	if err := EnsureDataDirectories(dataDir); err != nil {
		return nil, "", err
	}

	path := SettingsPath(dataDir)
	settings, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}

		settings = defaultSettings(dataDir)
		if err := Save(path, settings); err != nil {
			return nil, "", err
		}

		return settings, path, nil
	}

	if normalizeDefaults(settings, dataDir) {
		if err := Save(path, settings); err != nil {
			return nil, "", err
		}
	}

	return settings, path, nil
}

func defaultSettings(dataDir string) *Settings {
	settings := &Settings{Color: true}
	normalizeDefaults(settings, dataDir)
	return settings
}

func normalizeDefaults(settings *Settings, dataDir string) bool {
	updated := false
	keysDir := filepath.Join(dataDir, "keys")

	if settings.OwnID == "" {
		settings.OwnID = uuid.NewString()
		updated = true
	}

	if settings.Nickname == "" {
		nickname := "peerchat user"
		if host, err := os.Hostname(); err == nil && host != "" {
			nickname = host
		}
		settings.Nickname = nickname
		updated = true
	}

	if settings.MsgLenLimit < 1 {
		settings.MsgLenLimit = DefaultMsgLenLimit
		updated = true
	}
	if settings.HeaderLenLimit < message.MinHeaderLen {
		settings.HeaderLenLimit = DefaultHeaderLenLimit
		updated = true
	}
	if settings.NickLenLimit < 1 {
		settings.NickLenLimit = DefaultNickLenLimit
		updated = true
	}
	if !crypto.ValidSessionKeyBits(settings.SessionKeyLen) {
		settings.SessionKeyLen = DefaultSessionKeyLen
		updated = true
	}
	if settings.ConnectionTimeoutMS < 1 {
		settings.ConnectionTimeoutMS = DefaultConnectionTimeoutMS
		updated = true
	}
	if settings.Port < 1 || settings.Port > 65535 {
		settings.Port = DefaultPort
		updated = true
	}

	if settings.DatabasePath == "" {
		settings.DatabasePath = filepath.Join(dataDir, "messenger.db")
		updated = true
	}
	if settings.PrivateKeyPath == "" {
		settings.PrivateKeyPath = filepath.Join(keysDir, "x25519_private.pem")
		updated = true
	}
	if settings.PublicKeyPath == "" {
		settings.PublicKeyPath = filepath.Join(keysDir, "x25519_public.pem")
		updated = true
	}

	return updated
}
