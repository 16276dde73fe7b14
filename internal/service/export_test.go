package service

// ExportedRunningSaves lets the external test package exercise the guard.
type ExportedRunningSaves = runningSaves
