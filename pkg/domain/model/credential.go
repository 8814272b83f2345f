package model

// GoogleCredentialStatus reports the state of the user's uploaded Google
// OAuth credentials as recorded by the backend.
type GoogleCredentialStatus struct {
	Valid bool `json:"valid"`
}

// LinkedInCredentialStatus reports whether LinkedIn app credentials were
// registered for the user and whether the linked account is valid.
type LinkedInCredentialStatus struct {
	HasAppCredentials bool `json:"configured"`
	Valid             bool `json:"valid"`
}

// CredentialStatus is fetched from the backend and never mutated locally;
// the latest fetch always supersedes what is held.
type CredentialStatus struct {
	Google   GoogleCredentialStatus   `json:"google"`
	LinkedIn LinkedInCredentialStatus `json:"linkedin"`
}

// LinkedInAppCredentials are the OAuth application credentials the user
// registers so the backend can drive the LinkedIn authorization flow.
type LinkedInAppCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret" masq:"secret"`
}
