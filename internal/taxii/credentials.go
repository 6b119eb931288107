package taxii

import "encoding/base64"

// Credentials holds HTTP Basic username/password for a TAXII server.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EncodeBasicAuth returns the Authorization header value for HTTP Basic auth.
// Any input is accepted, including empty strings.
func EncodeBasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// Header returns the Authorization header value for these credentials.
func (c *Credentials) Header() string {
	return EncodeBasicAuth(c.Username, c.Password)
}
