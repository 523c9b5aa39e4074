// Package services implements the driving port interfaces.
// Services contain the core client logic and orchestrate
// calls to driven ports (backend, cache, archive, event sink).
//
// Services never speak HTTP directly and never touch the filesystem.
package services
