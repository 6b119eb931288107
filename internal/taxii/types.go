package taxii

// Discovery is the server discovery document.
type Discovery struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Contact     string   `json:"contact,omitempty"`
	Default     string   `json:"default,omitempty"`
	APIRoots    []string `json:"api_roots,omitempty"`
}

// APIRoot is the information document of an API root.
type APIRoot struct {
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Versions         []string `json:"versions"`
	MaxContentLength int64    `json:"max_content_length"`
}

// Collection describes a collection within an API root.
type Collection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Alias       string   `json:"alias,omitempty"`
	CanRead     bool     `json:"can_read"`
	CanWrite    bool     `json:"can_write"`
	MediaTypes  []string `json:"media_types,omitempty"`
	Added       string   `json:"added,omitempty"`
}

// Collections is the list-collections response.
type Collections struct {
	Collections []Collection `json:"collections"`
}

// Envelope is the list-objects response. Next is passed through, never followed.
type Envelope struct {
	More    bool      `json:"more,omitempty"`
	Next    string    `json:"next,omitempty"`
	Objects []*Object `json:"objects"`
}

// ManifestRecord summarises one object without returning it.
type ManifestRecord struct {
	ID        string `json:"id"`
	DateAdded string `json:"date_added"`
	Version   string `json:"version"`
	MediaType string `json:"media_type,omitempty"`
}

// Manifest is the get-manifest response.
type Manifest struct {
	More    bool             `json:"more,omitempty"`
	Objects []ManifestRecord `json:"objects"`
}

// Versions is the get-versions response.
type Versions struct {
	More     bool     `json:"more,omitempty"`
	Versions []string `json:"versions"`
}

// StatusDetail is one entry of a status document's success/failure/pending lists.
type StatusDetail struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Message string `json:"message,omitempty"`
}

// Status tracks an add-object request on the server.
type Status struct {
	ID               string         `json:"id"`
	Status           string         `json:"status"`
	RequestTimestamp string         `json:"request_timestamp,omitempty"`
	TotalCount       int            `json:"total_count"`
	SuccessCount     int            `json:"success_count"`
	Successes        []StatusDetail `json:"successes,omitempty"`
	FailureCount     int            `json:"failure_count"`
	Failures         []StatusDetail `json:"failures,omitempty"`
	PendingCount     int            `json:"pending_count"`
	Pendings         []StatusDetail `json:"pendings,omitempty"`
}
