package reconcile

import "go.uber.org/zap"

// Kind names a staged record kind.
type Kind string

const (
	KindUser  Kind = "user"
	KindForum Kind = "forum"
	KindEntry Kind = "entry"
	KindPost  Kind = "post"
)

// Outcome is the terminal state of one reconciled record.
type Outcome string

const (
	// OutcomePending means the record has not been processed yet.
	OutcomePending Outcome = "pending"
	// OutcomeCreated means a new target user was created.
	OutcomeCreated Outcome = "created"
	// OutcomeLinked means the record was bridged to an existing target user.
	OutcomeLinked Outcome = "linked"
	// OutcomeAlreadyBridged means a previous run already reconciled the record.
	OutcomeAlreadyBridged Outcome = "already_bridged"
	// OutcomePosted means a new target thread was created.
	OutcomePosted Outcome = "posted"
)

// Summary aggregates the outcomes of a run.
type Summary struct {
	UsersCreated        int `json:"users_created"`
	UsersLinked         int `json:"users_linked"`
	UsersAlreadyBridged int `json:"users_already_bridged"`
	UsersDropped        int `json:"users_dropped"`

	ForumsImported int `json:"forums_imported"`
	ForumsSkipped  int `json:"forums_skipped"`

	ThreadsImported int `json:"threads_imported"`
	EntriesDropped  int `json:"entries_dropped"`

	RepliesImported int `json:"replies_imported"`
	PostsDropped    int `json:"posts_dropped"`
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.UsersCreated += o.UsersCreated
	s.UsersLinked += o.UsersLinked
	s.UsersAlreadyBridged += o.UsersAlreadyBridged
	s.UsersDropped += o.UsersDropped
	s.ForumsImported += o.ForumsImported
	s.ForumsSkipped += o.ForumsSkipped
	s.ThreadsImported += o.ThreadsImported
	s.EntriesDropped += o.EntriesDropped
	s.RepliesImported += o.RepliesImported
	s.PostsDropped += o.PostsDropped
}

// Dropped returns the number of records dropped with a warning.
func (s Summary) Dropped() int {
	return s.UsersDropped + s.EntriesDropped + s.PostsDropped
}

// Fields renders the summary as zap fields for the final report line.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("users_created", s.UsersCreated),
		zap.Int("users_linked", s.UsersLinked),
		zap.Int("users_already_bridged", s.UsersAlreadyBridged),
		zap.Int("users_dropped", s.UsersDropped),
		zap.Int("forums_imported", s.ForumsImported),
		zap.Int("forums_skipped", s.ForumsSkipped),
		zap.Int("threads_imported", s.ThreadsImported),
		zap.Int("entries_dropped", s.EntriesDropped),
		zap.Int("replies_imported", s.RepliesImported),
		zap.Int("posts_dropped", s.PostsDropped),
	}
}
