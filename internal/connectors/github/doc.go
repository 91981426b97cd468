// Package github implements a connector for single files in GitHub
// repositories.
//
// # Source format
//
// Sources take the form
//
//	github:owner/repo[/path/to/file][@ref]
//
// where ref is a branch, tag or commit SHA (default: the repository's
// default branch). Without a path the repository README is fetched.
//
// # Authentication
//
// A personal access token is optional. Public repositories work without one
// at the unauthenticated limit of 60 requests per hour; with a token the
// limit is 5,000. The token is read from the GITHUB_TOKEN setting.
//
// # Rate Limiting
//
// The client throttles proactively with a token bucket and reactively from
// the X-RateLimit headers GitHub returns, waiting for the reset when the
// remaining quota drops below a buffer.
package github
