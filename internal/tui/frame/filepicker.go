// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package frame

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// FilePicker represents a file selection dialog. Directories are always
// listed; files only when Accept returns true.
type FilePicker struct {
	Title string
	// Accept filters files by name. Nil accepts everything.
	Accept func(name string) bool
	// Hint is shown in the info bar below the list.
	Hint   string
	Width  int
	Height int

	currentPath string
	files       []os.FileInfo
	selected    int // index into files (includes . and ..)
	vp          viewport.Model
	err         error
}

// NewFilePicker creates a new file picker starting at the given path.
func NewFilePicker(path string, accept func(string) bool) *FilePicker {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fp := &FilePicker{
		Accept:      accept,
		Width:       70,
		Height:      20,
		currentPath: path,
		vp:          viewport.New(60, 14),
	}
	fp.loadFiles()
	return fp
}

// Dir returns the directory being shown.
func (fp *FilePicker) Dir() string { return fp.currentPath }

// loadFiles reads the current directory and prepends . and .. entries.
func (fp *FilePicker) loadFiles() {
	entries, err := os.ReadDir(fp.currentPath)
	fp.err = err
	var files []os.FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.IsDir() && fp.Accept != nil && !fp.Accept(info.Name()) {
			continue
		}
		files = append(files, info)
	}

	// Sort: directories first, then files
	sort.Slice(files, func(i, j int) bool {
		if files[i].IsDir() != files[j].IsDir() {
			return files[i].IsDir()
		}
		return files[i].Name() < files[j].Name()
	})

	fp.files = append([]os.FileInfo{&directoryEntry{name: "."}, &directoryEntry{name: ".."}}, files...)
	fp.selected = 0
	fp.vp.GotoTop()
}

// directoryEntry is a fake os.FileInfo for . and .. entries.
type directoryEntry struct {
	name string
}

func (d *directoryEntry) Name() string       { return d.name }
func (d *directoryEntry) Size() int64        { return 0 }
func (d *directoryEntry) Mode() os.FileMode  { return os.ModeDir }
func (d *directoryEntry) ModTime() time.Time { return time.Time{} }
func (d *directoryEntry) IsDir() bool        { return true }
func (d *directoryEntry) Sys() interface{}   { return nil }

// Entries returns the names currently listed, . and .. included.
func (fp *FilePicker) Entries() []string {
	out := make([]string, 0, len(fp.files))
	for _, f := range fp.files {
		out = append(out, f.Name())
	}
	return out
}

// MoveUp moves selection up in the file list.
func (fp *FilePicker) MoveUp() {
	if fp.selected > 0 {
		fp.selected--
		if fp.selected < fp.vp.YOffset {
			fp.vp.ScrollUp(1)
		}
	}
}

// MoveDown moves selection down in the file list.
func (fp *FilePicker) MoveDown() {
	if fp.selected < len(fp.files)-1 {
		fp.selected++
		if fp.selected >= fp.vp.YOffset+fp.vp.Height {
			fp.vp.ScrollDown(1)
		}
	}
}

// Select moves the cursor to name if it is listed.
func (fp *FilePicker) Select(name string) bool {
	for i, f := range fp.files {
		if f.Name() == name {
			fp.selected = i
			return true
		}
	}
	return false
}

// SelectCurrent enters the selected directory and returns "", or returns the
// full path of the selected file.
func (fp *FilePicker) SelectCurrent() string {
	if fp.selected < 0 || fp.selected >= len(fp.files) {
		return ""
	}
	info := fp.files[fp.selected]
	switch {
	case info.Name() == ".":
		return ""
	case info.Name() == "..":
		fp.GoUp()
		return ""
	case info.IsDir():
		fp.currentPath = filepath.Join(fp.currentPath, info.Name())
		fp.loadFiles()
		return ""
	}
	return filepath.Join(fp.currentPath, info.Name())
}

// GoUp navigates up one directory level.
func (fp *FilePicker) GoUp() {
	parent := filepath.Dir(fp.currentPath)
	if parent != fp.currentPath {
		fp.currentPath = parent
		fp.loadFiles()
	}
}

// Render produces the file picker output.
func (fp *FilePicker) Render() string {
	fp.vp.Width = fp.Width - 4
	fp.vp.Height = fp.Height - 6

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("60")).
		Bold(true).
		Width(fp.Width - 2)
	header := pathStyle.Render(" " + fp.Title + "  " + fp.currentPath)

	var lines []string
	for i, info := range fp.files {
		prefix := "  "
		if i == fp.selected {
			prefix = "> "
		}
		name := info.Name()
		if info.IsDir() {
			name += string(filepath.Separator)
		}
		line := prefix + name
		if i == fp.selected {
			line = lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	fp.vp.SetContent(lipgloss.JoinVertical(lipgloss.Left, lines...))
	list := lipgloss.NewStyle().Width(fp.vp.Width).Height(fp.vp.Height).Render(fp.vp.View())

	info := fp.Hint
	if fp.err != nil {
		info = fp.err.Error()
	}
	infoBar := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(1, 1, 0, 1).Render(info)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Width(fp.Width)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, list, infoBar))
}
