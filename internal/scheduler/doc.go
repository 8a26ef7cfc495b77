// Package scheduler runs the due-date check once per wall-clock minute.
//
// A Loop is Stopped until Start, which checks immediately and then arms a
// one-shot timer for the next minute boundary. Each time the timer fires the
// loop is Running while it selects and notifies due tasks, then arms again.
// Stop cancels the pending timer and waits for a running check to finish, so
// a store write is never cut off half way. Failures are contained to the
// task (or the check) that caused them; only Stop ends the loop.
//
// A task whose minute passes while the process is suspended is not notified
// after wake-up.
package scheduler
