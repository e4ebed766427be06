// Package runtime provides the execution context for bgit commands.
//
// It bundles the opened repository, the logger, the repository configuration
// and the invocation's working directory so actions take a single parameter.
package runtime
