// Package petrel adds an iOS Notification Service Extension to a native Expo
// project.
package petrel

// Version is the petrel release.
const Version = "0.1.0"
