// Package mocks provides test doubles for the box client.
//
// This package should ONLY be imported in test files (_test.go).
//
// FakeBox is an in-process HTTP server speaking the box protocol
// (registration, challenge-response login, session checks). MockRequester
// is a func-field double of the authenticated dispatcher used by resource
// modules.
package mocks
