/*
Package saazsdk provides a client SDK for the SAAZ identity and events API.

# Overview

The package is organized around three types:

  - Client: stateless calls to every endpoint; protected calls take a token
  - SessionStore: the signed-in token and user, persisted through a Backend
  - Flow: sign-in orchestration that saves successful sessions into a store

	client := saazsdk.NewClient("http://localhost:4000")
	store := saazsdk.NewSessionStore(saazsdk.FileBackend{Path: filepath.Join(configDir, "saaz", "session.json")})
	if err := store.Load(); err != nil {
		return err
	}

	flow := &saazsdk.Flow{Client: client, Store: store}
	resp, err := flow.Login(ctx, "janedoe", "secret1")

# Federated Sign-in

A Google credential for an email with no account needs a role before the
account is created. LoginWithGoogle handles the round trip: the server
answers role_required with a pending id, the RoleChooser is asked for a
role, and the pending id is resubmitted with it.

	resp, err := flow.LoginWithGoogle(ctx, credential, func(ctx context.Context) (string, error) {
		return promptRole()
	})

# Error Handling

Failed calls return *APIError carrying the HTTP status, a stable code and
the server's message. Responses without a readable body report
GenericMessage.

	if saazsdk.IsCode(err, saazsdk.CodeInvalidCredentials) {
		// ask again
	}

# Thread Safety

Client and SessionStore are safe for concurrent use. Two stores sharing a
FileBackend do not coordinate; the last write wins.
*/
package saazsdk
