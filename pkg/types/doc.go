// Package types defines the locator, contract, backend and notifier
// interfaces, the Provider surface, configuration, and the standard errors
// of the provider.
package types
