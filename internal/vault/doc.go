// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vault is the HTTP client for the Sentinel vault service.
//
// Every authenticated call takes its bearer credential from a
// session.Holder immediately before the request is built. When the holder
// is empty the call returns session.ErrSessionMissing and nothing is sent.
//
// Authorization failures follow one policy. A 401 always ends the session.
// A 403 ends the session when the request was account-scoped (the artifact
// list and uploads); on a request about a single artifact it is reported
// as ErrAuthorizationDenied and the session survives.
package vault
