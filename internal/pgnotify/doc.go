// Package pgnotify carries record change signals between processes sharing a
// Postgres database. Writers announce a changed collection with pg_notify and
// every listening process refreshes the matching record lists.
package pgnotify
