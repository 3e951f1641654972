package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumeforge/internal/errors"
)

var (
	ifBlockRe     = regexp.MustCompile(`(?s)\{\{#if\s+(\w+)\}\}(.*?)\{\{/if\}\}`)
	placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
)

// RenderTemplate fills a template against the model: {{#if key}} blocks
// are kept only when the key is non-empty, then {{key}} placeholders are
// substituted. Missing keys render as empty strings.
func RenderTemplate(tpl string, model map[string]string) string {
	withIf := ifBlockRe.ReplaceAllStringFunc(tpl, func(m string) string {
		sub := ifBlockRe.FindStringSubmatch(m)
		if model[sub[1]] != "" {
			return sub[2]
		}
		return ""
	})
	return placeholderRe.ReplaceAllStringFunc(withIf, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		return model[key]
	})
}

// TemplateStore holds the optional resume and cover HTML templates. When a
// template file is absent the corresponding render returns false and the
// caller falls back to the built-in shells. With reload enabled, file
// changes are picked up without a restart.
type TemplateStore struct {
	mu sync.RWMutex

	resumePath string
	coverPath  string
	resumeTpl  string
	coverTpl   string

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	stopChan      chan struct{}
	running       bool

	logger *errors.Logger
}

// NewTemplateStore loads resume.html and cover.html from dir. Missing
// files are not errors; they just disable templated rendering.
func NewTemplateStore(dir string, logger *errors.Logger) *TemplateStore {
	ts := &TemplateStore{
		resumePath: filepath.Join(dir, "resume.html"),
		coverPath:  filepath.Join(dir, "cover.html"),
		stopChan:   make(chan struct{}),
		logger:     logger,
	}
	ts.reload()
	return ts
}

func (ts *TemplateStore) reload() {
	resume := readTemplateFile(ts.resumePath)
	cover := readTemplateFile(ts.coverPath)

	ts.mu.Lock()
	ts.resumeTpl = resume
	ts.coverTpl = cover
	ts.mu.Unlock()

	if ts.logger != nil {
		ts.logger.Info("Templates loaded",
			"resume", resume != "",
			"cover", cover != "")
	}
}

func readTemplateFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// HasResumeTemplate reports whether a resume template file was loaded.
func (ts *TemplateStore) HasResumeTemplate() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.resumeTpl != ""
}

// HasCoverTemplate reports whether a cover template file was loaded.
func (ts *TemplateStore) HasCoverTemplate() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.coverTpl != ""
}

// RenderResume renders the resume template against the model. The second
// return is false when no template is available.
func (ts *TemplateStore) RenderResume(model map[string]string) (string, bool) {
	ts.mu.RLock()
	tpl := ts.resumeTpl
	ts.mu.RUnlock()
	if tpl == "" {
		return "", false
	}
	return RenderTemplate(tpl, model), true
}

// RenderCover renders the cover template against the model. The second
// return is false when no template is available.
func (ts *TemplateStore) RenderCover(model map[string]string) (string, bool) {
	ts.mu.RLock()
	tpl := ts.coverTpl
	ts.mu.RUnlock()
	if tpl == "" {
		return "", false
	}
	return RenderTemplate(tpl, model), true
}

// StartWatching begins watching the template directory and reloads both
// templates after changes settle. Watching an absent directory is an
// error; callers should only enable reload in environments where the
// directory exists.
func (ts *TemplateStore) StartWatching() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.running {
		return fmt.Errorf("template watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(ts.resumePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil && ts.logger != nil {
			ts.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch template directory %s: %w", dir, err)
	}

	ts.fsWatcher = watcher
	ts.running = true
	go ts.watchLoop()

	if ts.logger != nil {
		ts.logger.Info("Template file watcher started", "directory", dir)
	}
	return nil
}

func (ts *TemplateStore) watchLoop() {
	for {
		select {
		case <-ts.stopChan:
			return
		case event, ok := <-ts.fsWatcher.Events:
			if !ok {
				return
			}
			if ts.isTemplateEvent(event) {
				ts.scheduleReload()
			}
		case err, ok := <-ts.fsWatcher.Errors:
			if !ok {
				return
			}
			if ts.logger != nil {
				ts.logger.LogError(err, "Template watcher error")
			}
		}
	}
}

func (ts *TemplateStore) isTemplateEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == filepath.Base(ts.resumePath) || name == filepath.Base(ts.coverPath)
}

// scheduleReload debounces bursts of events (editors often write a file
// several times in quick succession) into a single reload.
func (ts *TemplateStore) scheduleReload() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.debounceTimer != nil {
		ts.debounceTimer.Stop()
	}
	ts.debounceTimer = time.AfterFunc(500*time.Millisecond, ts.reload)
}

// Stop stops the template watcher. Safe to call when watching was never
// started.
func (ts *TemplateStore) Stop() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.running {
		return nil
	}

	close(ts.stopChan)
	if ts.debounceTimer != nil {
		ts.debounceTimer.Stop()
	}
	if err := ts.fsWatcher.Close(); err != nil {
		if ts.logger != nil {
			ts.logger.LogError(err, "Failed to close template watcher")
		}
		return err
	}
	ts.running = false

	if ts.logger != nil {
		ts.logger.Info("Template file watcher stopped")
	}
	return nil
}

// ResumeTemplateModel builds the placeholder model for resume.html.
// Section fragments are pre-rendered HTML and pass through unescaped;
// scalar fields are escaped here.
func ResumeTemplateModel(contact Contact, city, state, zip, summary string, sections SectionHTML) map[string]string {
	return map[string]string{
		"fullName":         EscapeHTML(contact.FullName),
		"address1":         EscapeHTML(TrimTrailingComma(contact.AddressLine)),
		"city":             EscapeHTML(TrimTrailingComma(city)),
		"state":            EscapeHTML(TrimTrailingComma(state)),
		"zip":              EscapeHTML(TrimTrailingComma(zip)),
		"phone":            EscapeHTML(contact.Phone),
		"email":            EscapeHTML(contact.Email),
		"summary":          EscapeHTML(summary),
		"experienceBlocks": sections.Experience,
		"educationList":    sections.EducationList,
		"skillsList":       sections.SkillsList,
		"certsList":        sections.CertsList,
		"hobbiesList":      sections.HobbiesList,
	}
}

// CoverTemplateModel builds the placeholder model for cover.html.
func CoverTemplateModel(contact Contact, bodyHTML string) map[string]string {
	return map[string]string{
		"fullName":     EscapeHTML(contact.FullName),
		"address1":     EscapeHTML(TrimTrailingComma(contact.AddressLine)),
		"cityStateZip": EscapeHTML(TrimTrailingComma(contact.CityStateZip)),
		"phone":        EscapeHTML(contact.Phone),
		"email":        EscapeHTML(contact.Email),
		"bodyHtml":     bodyHTML,
	}
}

// SectionHTML carries the pre-rendered section fragments for the resume
// template.
type SectionHTML struct {
	Experience    string
	EducationList string
	SkillsList    string
	CertsList     string
	HobbiesList   string
}
