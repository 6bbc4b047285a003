package model

// Keys is the key bag of a hosted Parse application. The platform returns it
// flattened into the application document.
type Keys struct {
	AppID         string `json:"appId"`
	MasterKey     string `json:"masterKey"`
	ClientKey     string `json:"clientKey"`
	JavascriptKey string `json:"javascriptKey"`
	RESTKey       string `json:"restKey"`
	DotNetKey     string `json:"dotnetKey"`
	WebhookKey    string `json:"webhookKey"`
}

// Application is a provisioned target application.
type Application struct {
	ID   string `json:"id"`
	Name string `json:"appName"`
	Keys
	DatabaseURL string `json:"databaseURL"`
}

// Summary returns the list view of the application.
func (a Application) Summary() ApplicationSummary {
	return ApplicationSummary{ID: a.ID, Name: a.Name, AppID: a.AppID}
}

// ApplicationSummary is one entry of the application list.
type ApplicationSummary struct {
	ID    string `json:"id"`
	Name  string `json:"appName"`
	AppID string `json:"appId"`
}

// Label renders the summary the way the wizard shows it.
func (s ApplicationSummary) Label() string {
	return s.Name + ": appId: " + s.AppID
}
