// Package fixtures loads selectors, routes and test data for the application
// under test. Defaults are embedded; a YAML file can override any subset.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"hrm-e2e/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

const longInputLength = 100

// Default returns the embedded fixtures.
func Default() (entity.Fixtures, error) {
	var f entity.Fixtures
	if err := yaml.Unmarshal(defaultYAML, &f); err != nil {
		return f, fmt.Errorf("parse embedded fixtures: %w", err)
	}
	fill(&f)
	return f, nil
}

// Load starts from the embedded fixtures and overlays path when it is set.
// A missing file is an error: an explicit override that silently does
// nothing would run the suite against the wrong selectors.
func Load(path string) (entity.Fixtures, error) {
	f, err := Default()
	if err != nil || path == "" {
		return f, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixtures %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(interpolateEnvVars(string(data))), &f); err != nil {
		return f, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	fill(&f)

	if err := Validate(f); err != nil {
		return f, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return f, nil
}

func fill(f *entity.Fixtures) {
	long := &f.Data.Credentials.LongInput
	if long.Username == "" {
		long.Username = strings.Repeat("a", longInputLength)
	}
	if long.Password == "" {
		long.Password = strings.Repeat("b", longInputLength)
	}
}

// Validate reports the first required selector or route that is empty.
func Validate(f entity.Fixtures) error {
	s := f.Selectors
	required := []struct {
		key, value string
	}{
		{"routes.login", f.Routes.Login},
		{"routes.dashboard", f.Routes.Dashboard},
		{"selectors.login.username", s.Login.Username.CSS},
		{"selectors.login.password", s.Login.Password.CSS},
		{"selectors.login.submit", s.Login.Submit.CSS},
		{"selectors.dashboard.header", s.Dashboard.Header.CSS},
		{"selectors.directory.table", s.Directory.Table.CSS},
		{"selectors.user.dropdown", s.User.Dropdown.CSS},
		{"selectors.user.logout", s.User.Logout.CSS},
		{"data.credentials.valid.username", f.Data.Credentials.Valid.Username},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR} with the variable's value; unset
// variables are left as written.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}
