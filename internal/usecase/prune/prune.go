// Package prune deletes old test artifacts from the results directory.
package prune

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hrm-e2e/internal/application/port/input"
	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
)

var _ input.Pruner = (*Pruner)(nil)

type Config struct {
	Root string
	// Patterns are matched against file base names with filepath.Match.
	Patterns  []string
	Retention time.Duration
	DryRun    bool
}

func DefaultConfig() Config {
	return Config{
		Root:      "test-results",
		Patterns:  []string{"video.mjpeg", "*.png", "dom.html"},
		Retention: 7 * 24 * time.Hour,
	}
}

type Pruner struct {
	cfg    Config
	logger output.LoggerPort
	now    func() time.Time
}

func New(cfg Config, logger output.LoggerPort) *Pruner {
	return &Pruner{cfg: cfg, logger: logger, now: time.Now}
}

// walkState tracks, per directory, how many entries would remain after the
// removals made so far.
type walkState struct {
	children map[string]int
	affected map[string]bool
}

// Prune removes matching files last modified before now minus Retention,
// then removes the directories those removals left empty, deepest first.
// The root itself is never removed. Errors on single entries are collected
// in the report and do not stop the pass.
func (p *Pruner) Prune(ctx context.Context) (*entity.PruneReport, error) {
	root := filepath.Clean(p.cfg.Root)
	report := &entity.PruneReport{
		Root:   root,
		Cutoff: p.now().Add(-p.cfg.Retention),
		DryRun: p.cfg.DryRun,
	}

	if len(p.cfg.Patterns) == 0 {
		return nil, errors.New("no file patterns to prune")
	}
	for _, pattern := range p.cfg.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		report.Missing = true
		p.logger.Info("no results directory found", "root", root)
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	state := &walkState{children: map[string]int{}, affected: map[string]bool{}}
	var dirs []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			p.recordError(report, root, path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		state.children[filepath.Dir(path)]++
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if !d.Type().IsRegular() || !p.matches(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			p.recordError(report, root, path, err)
			return nil
		}
		if !fi.ModTime().Before(report.Cutoff) {
			return nil
		}

		if !p.cfg.DryRun {
			if err := os.Remove(path); err != nil {
				p.recordError(report, root, path, err)
				return nil
			}
		}
		p.logger.Debug("removed artifact", "path", path, "modified", fi.ModTime(), "dry_run", p.cfg.DryRun)
		report.Removed = append(report.Removed, rel(root, path))
		state.removed(root, path)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", root, err)
	}

	p.removeEmptyDirs(report, root, dirs, state)

	p.logger.Info("pruned artifacts",
		"root", root,
		"removed", len(report.Removed),
		"dirs", len(report.Dirs),
		"errors", len(report.Errors),
		"dry_run", p.cfg.DryRun,
	)
	return report, nil
}

func (p *Pruner) removeEmptyDirs(report *entity.PruneReport, root string, dirs []string, state *walkState) {
	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	for _, dir := range dirs {
		if !state.affected[dir] || state.children[dir] > 0 {
			continue
		}
		if !p.cfg.DryRun {
			if err := os.Remove(dir); err != nil {
				p.recordError(report, root, dir, err)
				continue
			}
		}
		p.logger.Debug("removed empty directory", "path", dir, "dry_run", p.cfg.DryRun)
		report.Dirs = append(report.Dirs, rel(root, dir))
		state.removed(root, dir)
	}
}

func (p *Pruner) matches(name string) bool {
	for _, pattern := range p.cfg.Patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (p *Pruner) recordError(report *entity.PruneReport, root, path string, err error) {
	p.logger.Warn("prune failed", "path", path, "error", err)
	report.Errors = append(report.Errors, entity.PruneError{Path: rel(root, path), Err: err})
}

// removed drops path from its parent's entry count and marks every ancestor
// below root as a candidate for removal.
func (s *walkState) removed(root, path string) {
	parent := filepath.Dir(path)
	s.children[parent]--
	for dir := parent; dir != root; dir = filepath.Dir(dir) {
		if dir == "." || dir == string(filepath.Separator) {
			break
		}
		s.affected[dir] = true
	}
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
