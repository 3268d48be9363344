package rod

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementPort = (*elementHandle)(nil)

// elementHandle resolves its locator on every call.
type elementHandle struct {
	page *PageAdapter
	loc  entity.Locator
}

// find waits for the element up to the page timeout.
func (e *elementHandle) find(ctx context.Context) (*rod.Element, context.CancelFunc, error) {
	page, cancel, err := e.page.bind(ctx)
	if err != nil {
		return nil, nil, err
	}

	var el *rod.Element
	switch {
	case isXPathSelector(e.loc.CSS):
		el, err = page.ElementX(xpathOf(e.loc.CSS))
	case e.loc.Text != "":
		el, err = page.ElementR(e.loc.CSS, regexp.QuoteMeta(e.loc.Text))
	default:
		el, err = page.Element(e.loc.CSS)
	}
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("element not found: %s: %w", e.loc, err)
	}
	return el, cancel, nil
}

// Visible checks the current DOM without waiting for the element to appear.
func (e *elementHandle) Visible(ctx context.Context) (bool, error) {
	page, cancel, err := e.page.bind(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	var (
		has bool
		el  *rod.Element
	)
	switch {
	case isXPathSelector(e.loc.CSS):
		has, el, err = page.HasX(xpathOf(e.loc.CSS))
	case e.loc.Text != "":
		has, el, err = page.HasR(e.loc.CSS, regexp.QuoteMeta(e.loc.Text))
	default:
		has, el, err = page.Has(e.loc.CSS)
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", e.loc, err)
	}
	if !has {
		return false, nil
	}
	return el.Visible()
}

func (e *elementHandle) Fill(ctx context.Context, text string) error {
	el, cancel, err := e.find(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if text == "" {
		return nil
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input into %s failed: %w", e.loc, err)
	}
	return nil
}

func (e *elementHandle) Click(ctx context.Context) error {
	el, cancel, err := e.find(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s failed: %w", e.loc, err)
	}
	return nil
}

func (e *elementHandle) Text(ctx context.Context) (string, error) {
	el, cancel, err := e.find(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", e.loc, err)
	}
	return strings.TrimSpace(text), nil
}

// Count returns how many elements currently match, without waiting.
func (e *elementHandle) Count(ctx context.Context) (int, error) {
	page, cancel, err := e.page.bind(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var els rod.Elements
	if isXPathSelector(e.loc.CSS) {
		els, err = page.ElementsX(xpathOf(e.loc.CSS))
	} else {
		els, err = page.Elements(e.loc.CSS)
	}
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", e.loc, err)
	}
	if e.loc.Text == "" {
		return len(els), nil
	}

	n := 0
	for _, el := range els {
		text, err := el.Text()
		if err == nil && strings.Contains(text, e.loc.Text) {
			n++
		}
	}
	return n, nil
}

func (e *elementHandle) ScrollIntoView(ctx context.Context) error {
	el, cancel, err := e.find(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll to %s failed: %w", e.loc, err)
	}
	return nil
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "(/") ||
		strings.HasPrefix(selector, "xpath=")
}

func xpathOf(selector string) string {
	return strings.TrimPrefix(selector, "xpath=")
}
