// Package variables holds the system variable catalog and the resolver that
// flattens globals, branding values and caller data into one substitution map.
package variables

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"branded-email-workers/internal/models"
)

type Category string

const (
	CategoryApp     Category = "app"
	CategoryUser    Category = "user"
	CategoryDate    Category = "date"
	CategoryContact Category = "contact"
	CategoryURL     Category = "url"
	CategorySystem  Category = "system"
)

type DataType string

const (
	TypeString DataType = "string"
	TypeNumber DataType = "number"
	TypeDate   DataType = "date"
	TypeURL    DataType = "url"
	TypeEmail  DataType = "email"
)

// SystemVariable describes a variable every template may reference.
type SystemVariable struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Example     string   `json:"example"`
	IsRequired  bool     `json:"isRequired"`
	DataType    DataType `json:"dataType"`
}

// DateLayout renders current_date, e.g. "January 15, 2024".
const DateLayout = "January 2, 2006"

// SystemVariables is the fixed catalog, in display order.
var SystemVariables = []SystemVariable{
	{"app_name", "App Name", "The name of your application or company", CategoryApp, "MyAwesome App", true, TypeString},
	{"site_name", "Site Name", "Alternative name for your site (same as app_name)", CategoryApp, "MyAwesome App", true, TypeString},
	{"company_name", "Company Name", "Official company name for legal purposes", CategoryApp, "MyAwesome App Inc.", false, TypeString},
	{"app_tagline", "App Tagline", "Your app or company tagline/slogan", CategoryApp, "Making awesome things happen", false, TypeString},

	{"user_name", "User Name", "The recipient's full name", CategoryUser, "John Doe", false, TypeString},
	{"user_first_name", "User First Name", "The recipient's first name only", CategoryUser, "John", false, TypeString},
	{"user_last_name", "User Last Name", "The recipient's last name only", CategoryUser, "Doe", false, TypeString},
	{"user_email", "User Email", "The recipient's email address", CategoryUser, "john.doe@example.com", false, TypeEmail},

	{"current_year", "Current Year", "The current year (automatically updated)", CategoryDate, "2024", true, TypeNumber},
	{"current_date", "Current Date", "Today's date in readable format", CategoryDate, "January 15, 2024", true, TypeDate},
	{"current_month", "Current Month", "Current month name", CategoryDate, "January", true, TypeString},

	{"support_email", "Support Email", "Your customer support email address", CategoryContact, "support@myapp.com", true, TypeEmail},
	{"support_phone", "Support Phone", "Your customer support phone number", CategoryContact, "+1 (555) 123-4567", false, TypeString},
	{"company_address", "Company Address", "Your company's physical address", CategoryContact, "123 Main St, City, State 12345", false, TypeString},

	{"website_url", "Website URL", "Your main website URL", CategoryURL, "https://myapp.com", true, TypeURL},
	{"login_url", "Login URL", "Direct link to your login page", CategoryURL, "https://myapp.com/login", false, TypeURL},
	{"dashboard_url", "Dashboard URL", "Direct link to user dashboard", CategoryURL, "https://myapp.com/dashboard", false, TypeURL},
	{"unsubscribe_url", "Unsubscribe URL", "Link for users to unsubscribe from emails", CategoryURL, "https://myapp.com/unsubscribe?token=abc123", false, TypeURL},

	{"logo_url", "Logo URL", "URL to your company logo image", CategorySystem, "https://myapp.com/logo.png", false, TypeURL},
}

var systemIndex = func() map[string]int {
	idx := make(map[string]int, len(SystemVariables))
	for i, v := range SystemVariables {
		idx[v.Name] = i
	}
	return idx
}()

// Categories returns the catalog categories in a stable order.
func Categories() []Category {
	return []Category{CategoryApp, CategoryUser, CategoryDate, CategoryContact, CategoryURL, CategorySystem}
}

// ByCategory groups the catalog, keeping declaration order inside each group.
func ByCategory() map[Category][]SystemVariable {
	out := make(map[Category][]SystemVariable)
	for _, v := range SystemVariables {
		out[v.Category] = append(out[v.Category], v)
	}
	return out
}

func Lookup(name string) (SystemVariable, bool) {
	i, ok := systemIndex[name]
	if !ok {
		return SystemVariable{}, false
	}
	return SystemVariables[i], true
}

func IsSystemVariable(name string) bool {
	_, ok := systemIndex[name]
	return ok
}

// SampleData maps "{{name}}" to each variable's example value, for previews.
func SampleData() map[string]string {
	out := make(map[string]string, len(SystemVariables))
	for _, v := range SystemVariables {
		out["{{"+v.Name+"}}"] = v.Example
	}
	return out
}

// SampleValues maps bare names to example values.
func SampleValues() map[string]string {
	out := make(map[string]string, len(SystemVariables))
	for _, v := range SystemVariables {
		out[v.Name] = v.Example
	}
	return out
}

// DateValues computes the date variables for now.
func DateValues(now time.Time) map[string]string {
	return map[string]string{
		"current_year":  strconv.Itoa(now.Year()),
		"current_date":  now.Format(DateLayout),
		"current_month": now.Format("January"),
	}
}

// Populate builds default values for every system variable from the branding,
// the public base URL and caller-supplied data. branding may be nil.
func Populate(branding *models.AppBranding, baseURL string, additional map[string]interface{}, now time.Time) map[string]string {
	if branding == nil {
		branding = &models.AppBranding{}
	}
	if baseURL == "" {
		baseURL = "https://yourapp.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	vars := map[string]string{
		"app_name":        firstNonEmpty(branding.AppName, "Your App"),
		"site_name":       firstNonEmpty(branding.AppName, "Your App"),
		"company_name":    firstNonEmpty(branding.AppName, "Your Company"),
		"app_tagline":     firstNonEmpty(branding.Tagline, "Welcome to our platform"),
		"support_email":   firstNonEmpty(branding.Contact.SupportEmail, "support@yourapp.com"),
		"support_phone":   branding.Contact.Phone,
		"company_address": branding.Contact.Address,
		"website_url":     firstNonEmpty(branding.Contact.Website, "https://yourapp.com"),
		"login_url":       baseURL + "/login",
		"dashboard_url":   baseURL + "/dashboard",
		"unsubscribe_url": baseURL + "/unsubscribe",
		"logo_url":        firstNonEmpty(branding.LogoURL, baseURL+"/logo.png"),
	}
	for k, v := range DateValues(now) {
		vars[k] = v
	}

	vars["user_name"] = firstNonEmpty(Stringify(additional["user_name"]), Stringify(additional["userName"]))
	vars["user_first_name"] = firstNonEmpty(Stringify(additional["user_first_name"]), Stringify(additional["firstName"]))
	vars["user_last_name"] = firstNonEmpty(Stringify(additional["user_last_name"]), Stringify(additional["lastName"]))
	vars["user_email"] = firstNonEmpty(Stringify(additional["user_email"]), Stringify(additional["email"]))

	for k, v := range additional {
		if vars[k] == "" {
			vars[k] = Stringify(v)
		}
	}
	return vars
}

// Stringify renders a caller value for substitution. nil becomes "".
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
