package scenario

import (
	"context"
	"fmt"

	"hrm-e2e/internal/usecase/verifier"
)

func directoryGroup() Group {
	return Group{
		Name: "directory",
		Scenarios: []Scenario{
			{Name: "directory page navigation and basic validation", Run: onDirectory(directoryElements)},
			{Name: "directory search functionality validation", Run: onDirectory(directorySearch)},
			{Name: "directory pagination validation", Tags: []string{"@boundary"}, Run: onDirectory(directoryPagination)},
		},
	}
}

func onDirectory(run RunFunc) RunFunc {
	return loggedIn(func(ctx context.Context, env *Env) error {
		if err := openDirectory(ctx, env.Session(), env); err != nil {
			return err
		}
		return run(ctx, env)
	})
}

// openDirectory follows the Directory menu entry, retrying the whole
// navigation when the page does not come up.
func openDirectory(ctx context.Context, s *Session, env *Env) error {
	dir := env.Fixtures.Selectors.Directory

	probe := func(ctx context.Context) (struct{}, error) {
		if err := s.Click(ctx, dir.Menu); err != nil {
			return struct{}{}, err
		}
		if _, err := s.ExpectURL(ctx, env.Fixtures.Routes.Directory); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.ExpectVisible(ctx, dir.Table)
	}

	policy := env.Timing.Navigation
	policy.AttemptTimeout = 0
	_, err := verifier.Verify(ctx, probe, verifier.Always[struct{}], policy, env.options("open directory", true)...)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	return nil
}

func directoryElements(ctx context.Context, env *Env) error {
	s := env.Session()
	dir := env.Fixtures.Selectors.Directory

	if err := s.ExpectVisible(ctx, dir.Breadcrumb); err != nil {
		return err
	}
	if err := s.ExpectVisible(ctx, dir.SearchInput); err != nil {
		return err
	}
	if err := s.ExpectVisible(ctx, dir.Table); err != nil {
		return err
	}

	if s.IsVisible(ctx, dir.NoData) {
		env.Logger.Info("directory is empty")
		return nil
	}
	return s.ExpectVisible(ctx, dir.Row)
}

func directorySearch(ctx context.Context, env *Env) error {
	s := env.Session()
	dir := env.Fixtures.Selectors.Directory

	if err := s.Fill(ctx, dir.SearchInput, env.Fixtures.Data.Directory.SearchName); err != nil {
		return err
	}
	if err := s.Click(ctx, dir.Search); err != nil {
		return err
	}
	return s.ExpectVisible(ctx, dir.Table)
}

// directoryPagination checks the first-page boundary when the listing is
// paginated at all.
func directoryPagination(ctx context.Context, env *Env) error {
	s := env.Session()
	dir := env.Fixtures.Selectors.Directory

	if !s.IsVisible(ctx, dir.Pagination) {
		env.Logger.Info("directory is not paginated")
		return nil
	}
	if err := s.Click(ctx, dir.FirstPage); err != nil {
		return err
	}
	return s.ExpectText(ctx, dir.ActivePage, "1")
}
