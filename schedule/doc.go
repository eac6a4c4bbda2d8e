// Package schedule runs agents on recurring schedules.
//
// A Scheduler binds cron expressions to agent ids. On every tick it resolves
// the agent's active configuration from the store, executes it, and records
// the outcome, success or failure, through a RunRecorder. Concurrent runs are
// bounded so a burst of overlapping ticks cannot exhaust the process. A
// failing run never stops the schedule.
package schedule
