// Package config loads the application configuration from a config.yml
// file, a .env file and the process environment, in that order of
// precedence. File locations follow the usual search paths relative to
// the working directory; tests inject a FileSystem to avoid touching the
// real one.
package config
