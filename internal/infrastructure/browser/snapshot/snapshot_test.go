package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestClean_RemovesScriptAndStyle(t *testing.T) {
	raw := `
<body>
    <div id="app">Dashboard</div>
    <script>window.__app = {}</script>
    <style>.oxd-topbar {}</style>
</body>`

	out := Clean(raw, DefaultConfig())

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.Contains(t, out, `id="app"`)
	assert.Contains(t, out, "Dashboard")
}

func TestClean_RemovesComments(t *testing.T) {
	out := Clean(`<body><!-- vue anchor --><p>Text</p></body>`, DefaultConfig())

	assert.NotContains(t, out, "vue anchor")
	assert.Contains(t, out, "<p>Text</p>")
}

func TestClean_FiltersAttributes(t *testing.T) {
	raw := `<body><button class="oxd-button" data-v-7b563373="" data-test="login" aria-label="Login" onclick="go()" style="color:red">Login</button></body>`

	out := Clean(raw, DefaultConfig())

	assert.Contains(t, out, `class="oxd-button"`)
	assert.Contains(t, out, `data-test="login"`)
	assert.Contains(t, out, `aria-label="Login"`)
	assert.NotContains(t, out, "data-v-7b563373")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "color:red")
}

func TestClean_CustomFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DropAttr = func(attr html.Attribute) bool { return attr.Key == "id" }

	out := Clean(`<body><div id="x" class="y">z</div></body>`, cfg)

	assert.NotContains(t, out, `id="x"`)
	assert.Contains(t, out, `class="y"`)
}

func TestClean_Truncates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputSize = 64

	out := Clean("<body><p>"+strings.Repeat("employee ", 100)+"</p></body>", cfg)

	assert.True(t, strings.HasSuffix(out, "<!-- snapshot truncated -->"))
	assert.Len(t, out, 64+len("\n<!-- snapshot truncated -->"))
}

func TestClean_FullDocument(t *testing.T) {
	raw := `<!DOCTYPE html><html><head><title>OrangeHRM</title><meta charset="utf-8"></head><body><h6>Dashboard</h6></body></html>`

	out := Clean(raw, DefaultConfig())

	assert.True(t, strings.HasPrefix(out, "<body>"))
	assert.NotContains(t, out, "<title>")
	assert.Contains(t, out, "<h6>Dashboard</h6>")
}
