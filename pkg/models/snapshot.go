package models

// DiagnosticSnapshot is a point-in-time capture of page state used for logging
type DiagnosticSnapshot struct {
	Label    string               `json:"label"`
	URL      string               `json:"url"`
	Title    string               `json:"title"`
	Content  string               `json:"content"`
	Elements []InteractiveElement `json:"elements"`
	Tree     *DOMNode             `json:"tree,omitempty"`
	Errors   []string             `json:"errors,omitempty"`
}

// InteractiveElement describes a button or link found on the page
type InteractiveElement struct {
	Type   string  `json:"type"`
	Text   string  `json:"text"`
	Href   *string `json:"href"`
	ID     *string `json:"id"`
	Class  *string `json:"class"`
	TestID *string `json:"data-testid"`
}

// DOMNode is one element of the structural dump of document.body
type DOMNode struct {
	Tag      string     `json:"tag"`
	ID       string     `json:"id,omitempty"`
	Class    string     `json:"class,omitempty"`
	Children []*DOMNode `json:"children"`
}

// FormState describes the login form right before submission
type FormState struct {
	UsernameFieldExists    bool              `json:"usernameFieldExists"`
	PasswordFieldExists    bool              `json:"passwordFieldExists"`
	SubmitButtonExists     bool              `json:"submitButtonExists"`
	SubmitButtonProperties *ButtonProperties `json:"submitButtonProperties"`
	FormHTML               string            `json:"formHTML"`
	Errors                 []string          `json:"errors,omitempty"`
}

// ButtonProperties describes the login submit control
type ButtonProperties struct {
	Tag         string            `json:"tag"`
	ID          string            `json:"id"`
	ClassName   string            `json:"className"`
	TextContent string            `json:"textContent"`
	Type        string            `json:"type"`
	Visible     bool              `json:"visible"`
	Disabled    bool              `json:"disabled"`
	Attributes  map[string]string `json:"attributes"`
	IsClickable bool              `json:"isClickable"`
}
