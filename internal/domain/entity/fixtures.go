package entity

type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type CredentialSet struct {
	Valid         Credentials `yaml:"valid"`
	Invalid       Credentials `yaml:"invalid"`
	Empty         Credentials `yaml:"empty"`
	CaseSensitive Credentials `yaml:"case_sensitive"`
	LongInput     Credentials `yaml:"long_input"`
}

type DirectoryData struct {
	SearchName string `yaml:"search_name"`
	JobTitle   string `yaml:"job_title"`
	Location   string `yaml:"location"`
}

type TestData struct {
	Credentials CredentialSet `yaml:"credentials"`
	Directory   DirectoryData `yaml:"directory"`
}

type LoginSelectors struct {
	Username      Locator `yaml:"username"`
	Password      Locator `yaml:"password"`
	Submit        Locator `yaml:"submit"`
	ErrorAlert    Locator `yaml:"error_alert"`
	RequiredField Locator `yaml:"required_field"`
}

type DashboardSelectors struct {
	Header      Locator  `yaml:"header"`
	Widgets     Locator  `yaml:"widgets"`
	AnyWidget   Locator  `yaml:"any_widget"`
	WidgetTitle string   `yaml:"widget_title"`
	WidgetNames []string `yaml:"widget_names"`
}

type DirectorySelectors struct {
	Menu        Locator `yaml:"menu"`
	Breadcrumb  Locator `yaml:"breadcrumb"`
	Table       Locator `yaml:"table"`
	SearchInput Locator `yaml:"search_input"`
	Search      Locator `yaml:"search_button"`
	Reset       Locator `yaml:"reset_button"`
	NoData      Locator `yaml:"no_data"`
	Row         Locator `yaml:"row"`
	Pagination  Locator `yaml:"pagination"`
	FirstPage   Locator `yaml:"first_page"`
	ActivePage  Locator `yaml:"active_page"`
}

type UserSelectors struct {
	Dropdown Locator `yaml:"dropdown"`
	Logout   Locator `yaml:"logout"`
}

type AdminSelectors struct {
	Menu   Locator `yaml:"menu"`
	Header Locator `yaml:"header"`
}

type Selectors struct {
	Login     LoginSelectors     `yaml:"login"`
	Dashboard DashboardSelectors `yaml:"dashboard"`
	Directory DirectorySelectors `yaml:"directory"`
	User      UserSelectors      `yaml:"user"`
	Admin     AdminSelectors     `yaml:"admin"`
	// ScreenshotMask lists CSS selectors hidden while a frame is captured.
	ScreenshotMask []string `yaml:"screenshot_mask"`
}

// Routes are paths relative to the base URL.
type Routes struct {
	Root      string `yaml:"root"`
	Login     string `yaml:"login"`
	Dashboard string `yaml:"dashboard"`
	Directory string `yaml:"directory"`
	Admin     string `yaml:"admin"`
}

// Fixtures bundles everything a scenario needs to know about the application
// under test besides where it lives.
type Fixtures struct {
	Routes    Routes    `yaml:"routes"`
	Selectors Selectors `yaml:"selectors"`
	Data      TestData  `yaml:"data"`
}
