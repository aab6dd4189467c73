package internal

// Version is the vocabaudio release version.
const Version = "0.1.0"
