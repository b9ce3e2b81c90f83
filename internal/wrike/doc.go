// Package wrike retrieves tasks, contacts and projects from the Wrike v4 REST
// API and decodes them into typed model records.
//
// Structure:
//
//	client.go  - HTTP client with bearer auth and request pacing
//	errors.go  - RetrievalError
//	fetch.go   - FetchTasks, FetchUsers, FetchProjects
package wrike
