// Package config resolves runtime settings and service credentials.
package config
