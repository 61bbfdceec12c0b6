// Package events streams run lifecycle notifications to an external
// dashboard over Socket.IO. Four events are emitted: task_started,
// task_completed, stage_completed and run_completed, each with a JSON object
// payload.
package events
