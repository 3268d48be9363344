package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"

	"github.com/ysmood/gson"
)

//go:embed summary.md.tmpl
var SummaryTemplate string

const (
	MarkdownFile = "report.md"
	JSONFile     = "report.json"
)

type groupData struct {
	Name    string
	Results []resultData
}

type resultData struct {
	Name      string
	Tags      []string
	Status    entity.ScenarioStatus
	Attempts  int
	Duration  time.Duration
	Error     string
	Artifacts []string
}

type summaryData struct {
	Started  time.Time
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Groups   []groupData
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"status": func(s entity.ScenarioStatus) string {
		switch s {
		case entity.ScenarioPassed:
			return "✅ passed"
		case entity.ScenarioFailed:
			return "❌ failed"
		}
		return "⏭ " + string(s)
	},
}

// Markdown renders suite with baseTemplate. Groups and the scenarios in them
// are sorted by name so reports of identical runs diff cleanly.
func Markdown(baseTemplate string, suite entity.SuiteResult) (string, error) {
	data := summaryData{
		Started:  suite.Started,
		Duration: suite.Duration.Round(time.Millisecond),
		Passed:   suite.Count(entity.ScenarioPassed),
		Failed:   suite.Count(entity.ScenarioFailed),
		Skipped:  suite.Count(entity.ScenarioSkipped),
		Groups:   groupResults(suite.Results),
	}

	tmpl, err := template.New("summary").Funcs(funcs).Parse(baseTemplate)
	if err != nil {
		return "", fmt.Errorf("parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// JSON renders suite as indented JSON with durations in milliseconds.
func JSON(suite entity.SuiteResult) []byte {
	results := make([]map[string]any, 0, len(suite.Results))
	for _, r := range suite.Results {
		results = append(results, map[string]any{
			"name":        r.Name,
			"group":       r.Group,
			"tags":        nonNil(r.Tags),
			"status":      r.Status,
			"attempts":    r.Attempts,
			"duration_ms": r.Duration.Milliseconds(),
			"error":       r.Error,
			"artifacts":   nonNil(r.Artifacts),
		})
	}

	doc := gson.New(map[string]any{
		"started":     suite.Started.UTC().Format(time.RFC3339),
		"duration_ms": suite.Duration.Milliseconds(),
		"passed":      suite.Count(entity.ScenarioPassed),
		"failed":      suite.Count(entity.ScenarioFailed),
		"skipped":     suite.Count(entity.ScenarioSkipped),
		"results":     results,
	})
	return []byte(doc.JSON("", "  "))
}

// Write stores report.md and report.json under dir and returns their paths.
func Write(ctx context.Context, store output.ArtifactStore, dir string, suite entity.SuiteResult) ([]string, error) {
	md, err := Markdown(SummaryTemplate, suite)
	if err != nil {
		return nil, err
	}

	mdPath := filepath.Join(dir, MarkdownFile)
	if err := store.Save(ctx, mdPath, []byte(md)); err != nil {
		return nil, fmt.Errorf("save %s: %w", mdPath, err)
	}

	jsonPath := filepath.Join(dir, JSONFile)
	if err := store.Save(ctx, jsonPath, JSON(suite)); err != nil {
		return nil, fmt.Errorf("save %s: %w", jsonPath, err)
	}
	return []string{mdPath, jsonPath}, nil
}

func groupResults(results []entity.ScenarioResult) []groupData {
	byGroup := map[string][]resultData{}
	for _, r := range results {
		group := r.Group
		if group == "" {
			group = "ungrouped"
		}
		byGroup[group] = append(byGroup[group], resultData{
			Name:      r.Name,
			Tags:      r.Tags,
			Status:    r.Status,
			Attempts:  r.Attempts,
			Duration:  r.Duration.Round(time.Millisecond),
			Error:     r.Error,
			Artifacts: r.Artifacts,
		})
	}

	groups := make([]groupData, 0, len(byGroup))
	for name, rs := range byGroup {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Name < rs[j].Name })
		groups = append(groups, groupData{Name: name, Results: rs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
