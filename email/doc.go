// Package email provides outbound mail clients for the EmailClient
// port: an HTTP client speaking the Postmark server API and a recording
// mock for tests.
package email
