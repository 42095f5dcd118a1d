// Package identity reconciles staged users into platform accounts.
//
// Users with an email are matched by their original address, first to
// platform accounts, then to staged users already bridged. Only when neither
// matches is an account created, named after the masked address. Users without an email
// get an account named after their display name. Usernames never collide:
// a taken candidate is retried with the suffixes 1, 2, 3 and so on.
//
// The bridge to the platform account is written to the staging store right
// after each user, so an interrupted run resumes where it stopped.
package identity
