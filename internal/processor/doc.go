// Package processor contains the application logic behind the vocabaudio
// commands. It loads the configuration for every operation, annotates
// notes, drives the audio cache synchronizer and the periodic scheduler,
// and records sync runs in the history ledger. This package serves as the
// main coordinator between all other components.
package processor
