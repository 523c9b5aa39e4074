// Package rest implements driven.Backend over the questionnaire backend's
// HTTP API.
//
// Every failure is normalized into a *domain.Error. Reads are retried on
// transient failures; mutations are sent once and carry an Idempotency-Key
// header so a caller that retries can be recognised by the backend.
// Legacy wire aliases (id, text, manual_text, filename, indexed) are folded
// into the canonical domain fields here and never leave this package.
package rest
