package wiki

import "fmt"

// APIError is an error object returned in a wiki API response body, e.g. a missing page.
type APIError struct {
	Action  string
	Subject string
	Code    string
	Info    string
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("wiki %s error for %q: %s: %s", e.Action, e.Subject, e.Code, e.Info)
	}
	return fmt.Sprintf("wiki %s error for %q: %s", e.Action, e.Subject, e.Code)
}

// IsMissingPage reports whether the API rejected the request because the page does not exist.
func (e *APIError) IsMissingPage() bool {
	return e.Code == "missingtitle" || e.Code == "invalidtitle"
}
