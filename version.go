package main

// Version is the versionbump CLI version.
var Version = "0.4.0"
