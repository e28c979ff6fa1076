package scrapbox

// Line is a single line of page text. Created/Updated are Unix timestamps
// and may be zero when the export omits per-line metadata. Line order is
// semantically significant and must survive replication verbatim.
type Line struct {
	Text    string `json:"text"`
	Created int64  `json:"created,omitempty"`
	Updated int64  `json:"updated,omitempty"`
}

// Page is a document snapshot from a project export. Title is unique within
// a project and serves as the replication key. Updated is the Unix timestamp
// of the last modification to the page.
type Page struct {
	Title   string `json:"title"`
	Created int64  `json:"created,omitempty"`
	Updated int64  `json:"updated"`
	Lines   []Line `json:"lines"`
}

// Export is the response body of the project export endpoint.
type Export struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Exported    int64  `json:"exported"`
	Pages       []Page `json:"pages"`
}

// importPayload is the JSON body uploaded as import.json.
type importPayload struct {
	Pages []Page `json:"pages"`
}

// userResponse mirrors the /api/users/me JSON response. Only the CSRF token
// is consumed; the import endpoint requires it per session.
type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CSRFToken string `json:"csrfToken"`
}
