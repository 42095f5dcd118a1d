// Package models defines the content platform's relational model: users,
// their OpenID associations, threads with tags, and the posts of a thread.
package models
