package google

// DefaultOAuthScopes are the Google OAuth scopes coldguard needs.
//
// Classification only reads mail; the blocker actions (labeling, archiving,
// marking read) need modify access. gmail.modify covers both without
// granting send or settings access.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail: read plus label/thread modification
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.labels",
}
