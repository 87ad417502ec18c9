/*
Package authsdk provides a client SDK for the Triada authentication service.

# SDKClient vs Session

The package is organized around two types:

  - SDKClient: public endpoints (register, login, password reset, health)
  - Session: endpoints that need a bearer token

Create an SDKClient and sign in to obtain a Session:

	client := authsdk.NewSDKClient("https://api.triada.example")

	session, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "correct-horse",
	})

	session, err = client.Login(ctx, "alice", "correct-horse")

Use the Session for the caller's own account:

	profile, err := session.Me(ctx)
	_, err = session.ChangePassword(ctx, "correct-horse", "battery-staple")

# Token lifetime

Access tokens live for 30 minutes and there are no refresh tokens. A
Session renews its token through POST /auth/refresh when it is within a
minute of expiring. Once a token has expired the caller must log in again.
Tokens are not revoked by logout or password changes.

# Password reset

	_, err := client.ForgotPassword(ctx, "alice@example.com")
	// the token arrives by email
	_, err = client.ResetPassword(ctx, token, "new-password")

# Errors

Error responses are returned as *APIError and can be matched against the
predefined values:

	_, err := client.Login(ctx, "alice", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// prompt again
	}

Handlers in the service use the same values to write responses, so the
codes seen by the client always match the ones the server emits.
*/
package authsdk
