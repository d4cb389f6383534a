// Package cli is the interactive Taskboard terminal client.
//
// It wires configuration, the local database, the keyring, the backend
// client and the application services, then runs a read–eval–print loop
// whose commands depend on the current screen of the view model.
//
// Screens:
//   - landing: signup, signin
//   - dashboard: task lists, notifications, account settings and, for
//     administrators, users and the audit log
//   - admin: users, audit log and settings
//
// While a dashboard screen is shown the client checks for due-soon tasks
// and refreshes the unread notification count in the background.
package cli
