// Package reconcile holds the vocabulary shared by the importer's reconcilers:
// record kinds, per-record outcomes, the run summary, the recoverable error
// kinds, and the operator feedback sink.
//
// # Per-record reconciliation
//
// Reconciliation walks staged records one at a time. Each record ends in
// exactly one outcome:
//
//   - a user is Created, Linked to an existing account, or Dropped
//   - a forum is Imported or Skipped
//   - an entry or a post is Posted or Dropped
//
// Dropping a record is never fatal. The reconciler reports it once through
// Feedback.Dropped and moves on to the next record, so a run over a messy
// dump completes with partial success.
//
// # Errors
//
// UnresolvedReferenceError and TargetServiceError are the two recoverable
// kinds; IsRecoverable tells a reconciler whether an error should drop the
// current record or abort the run.
//
// # Usage
//
//	fb := reconcile.NewZapFeedback(logger, 500)
//	fb.Dropped(reconcile.KindEntry, 42, err)
//
//	var sum reconcile.Summary
//	sum.ThreadsImported++
//	logger.Info("Import finished", sum.Fields()...)
package reconcile
