package scenario

import (
	"context"
	"fmt"
	"time"
)

func securityGroup() Group {
	return Group{
		Name: "security",
		Scenarios: []Scenario{
			{
				Name:    "session timeout simulation",
				Tags:    []string{"@mock", "@security"},
				Timeout: 30 * time.Second,
				Run:     loggedIn(simulatedSessionTimeout),
			},
		},
	}
}

// simulatedSessionTimeout drops every trace of the session instead of
// waiting for it to expire.
func simulatedSessionTimeout(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.Page().ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return expectRedirectToLogin(ctx, s, 5*time.Second)
}

// Suite returns every scenario group in execution order.
func Suite() []Group {
	return []Group{
		authGroup(),
		dashboardGroup(),
		directoryGroup(),
		securityGroup(),
	}
}
