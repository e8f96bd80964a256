package notion

// Page is a normalized database page: its identifier plus the value of the
// URL-typed "Info" property, or nil when the page has no such value.
type Page struct {
	ID      string  `json:"id"`
	InfoURL *string `json:"infoUrl"`
}

// PagesResponse is the response envelope for the pages endpoint.
type PagesResponse struct {
	Pages []Page `json:"pages"`
}

// Database is a normalized database summary.
type Database struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Icon           string `json:"icon,omitempty"`
	LastEditedTime string `json:"lastEditedTime"`
}

// FailedDatabase records a configured database that could not be fetched.
type FailedDatabase struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// User is the workspace user the integration runs as.
type User struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Workspace is a workspace summary.
type Workspace struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// WorkspaceData aggregates everything the landing page needs.
type WorkspaceData struct {
	User            *User            `json:"user"`
	Workspace       *Workspace       `json:"workspace"`
	Databases       []Database       `json:"databases"`
	FailedDatabases []FailedDatabase `json:"failedDatabases"`
}

// CreateEntryInput holds the fields for a new media entry.
type CreateEntryInput struct {
	DatabaseID string `json:"databaseId"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	Genre      string `json:"genre"`
	PosterURL  string `json:"posterUrl,omitempty"`
}

// --- Notion wire types ---

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results    []rawPage `json:"results"`
	HasMore    bool      `json:"has_more"`
	NextCursor *string   `json:"next_cursor"`
}

type rawPage struct {
	ID         string                 `json:"id"`
	Properties map[string]rawProperty `json:"properties"`
}

type rawProperty struct {
	Type string  `json:"type"`
	URL  *string `json:"url,omitempty"`
}

type rawDatabase struct {
	ID             string                    `json:"id"`
	Title          []rawRichText             `json:"title"`
	Icon           *rawIcon                  `json:"icon"`
	LastEditedTime string                    `json:"last_edited_time"`
	Properties     map[string]map[string]any `json:"properties"`
}

type rawRichText struct {
	PlainText string `json:"plain_text"`
}

type rawIcon struct {
	Emoji    string `json:"emoji,omitempty"`
	External *struct {
		URL string `json:"url"`
	} `json:"external,omitempty"`
}

type rawUser struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Person    *struct {
		Email string `json:"email"`
	} `json:"person,omitempty"`
	Bot *struct {
		Owner struct {
			Type      string `json:"type"`
			Workspace bool   `json:"workspace"`
		} `json:"owner"`
		WorkspaceName string `json:"workspace_name"`
	} `json:"bot,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
