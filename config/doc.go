// Package config loads trackerhealth configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, and TRACKERHEALTH_* environment variables. Credentials may then be
// resolved through package secret, so a file can say
//
//	auth:
//	  jwt:
//	    secret: secretref:file:/run/secrets/jwt
//
// and never carry the secret itself.
package config
