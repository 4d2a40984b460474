// Package core holds the transfer logic behind the HTTP API and the CLI.
//
// An [Orchestrator] routes a [TransferRequest] by direction: file_to_source
// runs the flat-file engine's import/export, source_to_file asks the
// database [Connector] to export a table to a file. Either way the
// [schema.IngestionResult] comes back unmodified.
//
// [Service] wraps the orchestrator with what a multi-user server needs:
//
//   - a [TransferLimiter] bounding concurrent transfers
//   - job history, written before and after every transfer
//   - saved transfer configurations, scoped to their owner
//   - user registration and login
//   - a cron job purging old history ([Service.StartHistoryPurge])
//
// Errors are mapped to user-facing messages with support codes by
// [MapError]; see error_messages.go for the code list.
package core
