package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/intraboard/board/pkg/sdk"
)

const (
	// SessionFileName holds caches that live only as long as the session.
	SessionFileName = "session.json"
	// PrefsFileName holds preferences that survive logout.
	PrefsFileName = "prefs.json"
	// FileVersion is the current schema version of both files.
	FileVersion = "1"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// NormalizeTheme maps any stored value onto a known theme. Unknown values are dark.
func NormalizeTheme(theme string) string {
	if theme == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

type sessionFile struct {
	Version   string         `json:"version"`
	Identity  *sdk.Identity  `json:"identity,omitempty"`
	Menus     []sdk.MenuNode `json:"menus,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Prefs are the viewer's display preferences.
type Prefs struct {
	Version             string  `json:"version"`
	Theme               string  `json:"theme"`
	SidebarCollapsed    bool    `json:"sidebar_collapsed"`
	CollapsedCategories []int64 `json:"collapsed_categories"`
}

// Store keeps client-side state under a directory. Writes are atomic.
type Store struct {
	dir string
	mu  sync.Mutex
}

var _ sdk.SessionCache = (*Store)(nil)

// New returns a store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// LoadIdentity returns the cached viewer, or nil when none is cached.
func (s *Store) LoadIdentity() (*sdk.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.readSession()
	if err != nil || f == nil {
		return nil, err
	}
	return f.Identity, nil
}

func (s *Store) SaveIdentity(identity sdk.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSession(func(f *sessionFile) { f.Identity = &identity })
}

// LoadMenus returns the cached menu list, or nil when none is cached.
func (s *Store) LoadMenus() ([]sdk.MenuNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.readSession()
	if err != nil || f == nil {
		return nil, err
	}
	return f.Menus, nil
}

func (s *Store) SaveMenus(menus []sdk.MenuNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSession(func(f *sessionFile) { f.Menus = slices.Clone(menus) })
}

// ClearSession drops the identity and menu caches together.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, SessionFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session cache: %w", err)
	}
	return nil
}

// LoadPrefs returns stored preferences with defaults for missing or corrupt files.
func (s *Store) LoadPrefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readPrefs()
}

// SetTheme stores the theme, normalized.
func (s *Store) SetTheme(theme string) (Prefs, error) {
	return s.updatePrefs(func(p *Prefs) { p.Theme = NormalizeTheme(theme) })
}

// SetSidebarCollapsed stores the sidebar state.
func (s *Store) SetSidebarCollapsed(collapsed bool) (Prefs, error) {
	return s.updatePrefs(func(p *Prefs) { p.SidebarCollapsed = collapsed })
}

// ToggleCategory flips the collapsed state of a category and reports the new state.
func (s *Store) ToggleCategory(categoryID int64) (bool, error) {
	var collapsed bool
	_, err := s.updatePrefs(func(p *Prefs) {
		if i := slices.Index(p.CollapsedCategories, categoryID); i >= 0 {
			p.CollapsedCategories = slices.Delete(p.CollapsedCategories, i, i+1)
			return
		}
		p.CollapsedCategories = append(p.CollapsedCategories, categoryID)
		slices.Sort(p.CollapsedCategories)
		collapsed = true
	})
	return collapsed, err
}

// IsCategoryCollapsed reports whether the category is collapsed.
func (p Prefs) IsCategoryCollapsed(categoryID int64) bool {
	return slices.Contains(p.CollapsedCategories, categoryID)
}

func (s *Store) readSession() (*sessionFile, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, SessionFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("corrupted session cache (invalid JSON): %w", err)
	}
	if f.Version != FileVersion {
		return nil, fmt.Errorf("unsupported session cache version: %s (expected %s)", f.Version, FileVersion)
	}
	return &f, nil
}

func (s *Store) updateSession(mutate func(*sessionFile)) error {
	f, err := s.readSession()
	if err != nil || f == nil {
		// A corrupt cache is replaced rather than repaired.
		f = &sessionFile{}
	}
	mutate(f)
	f.Version = FileVersion
	f.UpdatedAt = time.Now().UTC()
	return writeAtomic(filepath.Join(s.dir, SessionFileName), f, 0o600)
}

func (s *Store) readPrefs() Prefs {
	p := Prefs{Version: FileVersion, Theme: ThemeDark, CollapsedCategories: []int64{}}
	data, err := os.ReadFile(filepath.Join(s.dir, PrefsFileName))
	if err != nil {
		return p
	}
	var stored Prefs
	if err := json.Unmarshal(data, &stored); err != nil {
		return p
	}
	p.Theme = NormalizeTheme(stored.Theme)
	p.SidebarCollapsed = stored.SidebarCollapsed
	if stored.CollapsedCategories != nil {
		p.CollapsedCategories = stored.CollapsedCategories
	}
	return p
}

func (s *Store) updatePrefs(mutate func(*Prefs)) (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.readPrefs()
	mutate(&p)
	if err := writeAtomic(filepath.Join(s.dir, PrefsFileName), p, 0o644); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// writeAtomic writes v as indented JSON via a temp file and rename.
func writeAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(tmpPath), err)
	}
	return nil
}
