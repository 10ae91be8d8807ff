package session

// Session is the client's current authenticated identity.
// Both fields are set together or empty together.
type Session struct {
	AccessToken string
	UserID      string
}

// Valid reports whether the session carries a usable credential pair.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.UserID != ""
}
