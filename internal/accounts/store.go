// Package accounts persists the configured accounts of the pool. The file is
// either TOML ([[accounts]] tables) or a JSON array, chosen by extension.
package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"

	"accountpool/internal/credential"
	jsonpkg "accountpool/internal/pkg/json"
	"accountpool/internal/pkg/toml"
)

// Entry is one configured account as stored on disk.
type Entry struct {
	Name     string             `json:"name"`
	Password string             `json:"password"`
	Options  credential.Options `json:"options,omitempty"`
}

type Store struct {
	mu       sync.RWMutex
	entries  []Entry
	filePath string
}

func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

func (s *Store) Path() string { return s.filePath }

func (s *Store) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.filePath), ".toml")
}

// Load reads the file. A missing file yields an empty store.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = []Entry{}
			return nil
		}
		return errors.Trace(err)
	}

	var entries []Entry
	if s.isTOML() {
		entries, err = decodeTOML(string(data))
	} else {
		err = jsonpkg.Unmarshal(data, &entries)
	}
	if err != nil {
		return errors.Annotatef(err, "cannot parse %s", s.filePath)
	}

	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	s.entries = out
	return nil
}

func (s *Store) saveUnlocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return errors.Trace(err)
	}

	var data []byte
	if s.isTOML() {
		data = []byte(encodeTOML(s.entries))
	} else {
		b, err := jsonpkg.MarshalIndent(s.entries, "", "  ")
		if err != nil {
			return errors.Trace(err)
		}
		data = b
	}
	return errors.Trace(os.WriteFile(s.filePath, data, 0o600))
}

// Configs returns the pool configuration of every stored account.
func (s *Store) Configs() []credential.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]credential.Config, len(s.entries))
	for i, e := range s.entries {
		out[i] = credential.Config{Name: e.Name, Secret: e.Password, Options: cloneOptions(e.Options)}
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Upsert records an account change the same way the pool applies it: a
// non-empty password replaces the stored one, options merge key by key.
func (s *Store) Upsert(name, password string, options credential.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		s.entries = append(s.entries, Entry{Name: name, Password: password, Options: cloneOptions(options)})
		return s.saveUnlocked()
	}

	if password != "" {
		s.entries[i].Password = password
	}
	if len(options) > 0 {
		merged := cloneOptions(s.entries[i].Options)
		for k, v := range options {
			merged[k] = slices.Clone(v)
		}
		s.entries[i].Options = merged
	}
	return s.saveUnlocked()
}

// Delete removes name. It reports whether the account existed.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		return false, nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true, s.saveUnlocked()
}

func cloneOptions(o credential.Options) credential.Options {
	if o == nil {
		return nil
	}
	out := make(credential.Options, len(o))
	for k, v := range o {
		out[k] = slices.Clone(v)
	}
	return out
}

func decodeTOML(input string) ([]Entry, error) {
	doc, err := toml.Parse(input)
	if err != nil {
		return nil, err
	}
	rows, ok := doc["accounts"].([]map[string]any)
	if !ok {
		if _, present := doc["accounts"]; present {
			return nil, errors.NotValidf("accounts section")
		}
		return nil, nil
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		var e Entry
		for k, v := range row {
			switch k {
			case "name":
				e.Name = scalar(v)
			case "password":
				e.Password = scalar(v)
			default:
				if e.Options == nil {
					e.Options = credential.Options{}
				}
				e.Options[k] = values(v)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func encodeTOML(entries []Entry) string {
	rows := make([]map[string]any, len(entries))
	for i, e := range entries {
		row := map[string]any{"name": e.Name, "password": e.Password}
		for k, v := range e.Options {
			if k == "name" || k == "password" {
				continue
			}
			row[k] = slices.Clone(v)
		}
		rows[i] = row
	}
	return toml.EncodeArrayTables("accounts", rows, "name", "password")
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func values(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{scalar(v)}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, scalar(item))
	}
	return out
}
