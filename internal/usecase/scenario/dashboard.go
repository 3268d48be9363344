package scenario

import (
	"context"

	"hrm-e2e/internal/domain/entity"
)

func dashboardGroup() Group {
	return Group{
		Name: "dashboard",
		Scenarios: []Scenario{
			{Name: "dashboard page validation", Run: loggedIn(dashboardValidation)},
		},
	}
}

func loggedIn(run RunFunc) RunFunc {
	return func(ctx context.Context, env *Env) error {
		if err := env.Session().Login(ctx); err != nil {
			return err
		}
		return run(ctx, env)
	}
}

func dashboardValidation(ctx context.Context, env *Env) error {
	s := env.Session()
	dash := env.Fixtures.Selectors.Dashboard

	if err := s.ExpectText(ctx, dash.Header, "Dashboard"); err != nil {
		return err
	}
	if err := s.ExpectVisible(ctx, dash.Widgets); err != nil {
		return err
	}
	if err := verifyWidgets(ctx, s, dash); err != nil {
		return err
	}
	_, err := s.Screenshot(ctx, "dashboard-validation")
	return err
}

// verifyWidgets waits for any widget to render, then checks each named
// widget title, scrolling it into view first.
func verifyWidgets(ctx context.Context, s *Session, dash entity.DashboardSelectors) error {
	if err := s.ExpectVisible(ctx, dash.AnyWidget); err != nil {
		return err
	}
	for _, name := range dash.WidgetNames {
		title := entity.Locator{CSS: dash.WidgetTitle, Text: name}
		if err := s.page.Locate(title).ScrollIntoView(ctx); err != nil {
			return err
		}
		if err := s.ExpectVisible(ctx, title); err != nil {
			return err
		}
	}
	return nil
}
