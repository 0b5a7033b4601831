// Package secret resolves credentials referenced from configuration.
//
// Configuration values may name environment variables with ${VAR}, which is
// strict: a missing variable is an error. They may also carry references of
// the form secretref:<provider>:<ref>, either as the whole value or inline:
//
//	auth.jwt.secret: secretref:file:/run/secrets/jwt
//	auth.api_keys: ["secretref:env:TRACKERHEALTH_OPS_KEY"]
//
// Two providers are built in: env reads a variable, file reads a file with
// trailing newlines trimmed. Others can be added through a Registry.
package secret
