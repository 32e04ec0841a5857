package model

// Session is what the backend hands out on login.
type Session struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

// Valid reports whether both credentials are present.
func (s *Session) Valid() bool {
	return s != nil && s.Username != "" && s.AccessToken != ""
}

// Registration is the sign-up form.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      Number `json:"age,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}
